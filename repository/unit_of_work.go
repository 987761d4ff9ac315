package repository

import (
	"context"
	"fmt"

	"charityfund/database"
	"charityfund/events"
	"charityfund/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	txOptions        pgx.TxOptions
	transactionalBus *events.TransactionalBus
	needRepo         service.NeedRepository
	beneficiaryRepo  service.BeneficiaryRepository
	donationRepo     service.DonationRepository
	allocationRepo   service.AllocationRepository
	sweepRunRepo     service.SweepRunRepository
	reportRepo       service.ReportRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Every unit of work runs
// at read committed; allocation correctness relies on the donation row lock and
// the compare-and-swap raise on needs rather than on serializable isolation.
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:        db,
		eventBus:  eventBus,
		txOptions: pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

type unitOfWorkFactory struct {
	db        *database.DB
	eventBus  *events.Bus
	txOptions pgx.TxOptions
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		txOptions:        f.txOptions,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, u.txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translateError(err))
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.needRepo = newNeedRepositoryWithTx(tx)
	u.beneficiaryRepo = newBeneficiaryRepositoryWithTx(tx)
	u.donationRepo = newDonationRepositoryWithTx(tx)
	u.allocationRepo = newAllocationRepositoryWithTx(tx)
	u.sweepRunRepo = newSweepRunRepositoryWithTx(tx)
	u.reportRepo = newReportRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	u.tx = nil
	if err != nil {
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}

	// Flush pending events after successful commit
	u.transactionalBus.Flush(u.ctx)

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil

	// Discard pending events on rollback
	u.transactionalBus.Discard()

	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// NeedRepository returns the need repository for this unit of work
func (u *unitOfWork) NeedRepository() service.NeedRepository {
	if u.needRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.needRepo
}

// BeneficiaryRepository returns the beneficiary repository for this unit of work
func (u *unitOfWork) BeneficiaryRepository() service.BeneficiaryRepository {
	if u.beneficiaryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.beneficiaryRepo
}

// DonationRepository returns the donation repository for this unit of work
func (u *unitOfWork) DonationRepository() service.DonationRepository {
	if u.donationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.donationRepo
}

// AllocationRepository returns the allocation ledger for this unit of work
func (u *unitOfWork) AllocationRepository() service.AllocationRepository {
	if u.allocationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.allocationRepo
}

// SweepRunRepository returns the sweep run repository for this unit of work
func (u *unitOfWork) SweepRunRepository() service.SweepRunRepository {
	if u.sweepRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.sweepRunRepo
}

// ReportRepository returns the report repository for this unit of work
func (u *unitOfWork) ReportRepository() service.ReportRepository {
	if u.reportRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.reportRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
