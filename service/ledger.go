package service

import (
	"context"
	"fmt"

	"charityfund/events"
	"charityfund/models"

	"github.com/shopspring/decimal"
)

// RecordAllocation records a ledger entry and emits the matching events.
// This is the single entry point for moving money out of a donation. When the
// allocation targets a need, need must be the row it names; its raised total is
// moved by the same amount in the same unit of work.
func RecordAllocation(ctx context.Context, uow UnitOfWork, allocation *models.Allocation, need *models.Need) error {
	if allocation.NeedID != nil {
		if need == nil || need.ID != *allocation.NeedID {
			return fmt.Errorf("allocation to need %d without its need row: %w", *allocation.NeedID, ErrInvalidAllocation)
		}
	}

	if err := uow.AllocationRepository().Record(ctx, allocation); err != nil {
		return fmt.Errorf("failed to record allocation: %w", err)
	}

	if allocation.NeedID != nil {
		if err := uow.NeedRepository().ApplyRaise(ctx, need, allocation.Amount); err != nil {
			return fmt.Errorf("failed to raise need %d: %w", need.ID, err)
		}
	}

	// Events are flushed after the transaction commits
	uow.EventBus().Publish(events.AllocationRecordedEvent{
		AllocationID:  allocation.ID,
		DonationID:    allocation.DonationID,
		NeedID:        allocation.NeedID,
		BeneficiaryID: allocation.BeneficiaryID,
		Amount:        allocation.Amount,
		AllocatedBy:   allocation.AllocatedBy,
	})

	if need != nil && allocation.NeedID != nil && need.Fulfilled {
		uow.EventBus().Publish(events.NeedFulfilledEvent{
			NeedID:       need.ID,
			Title:        need.Title,
			AmountNeeded: need.AmountNeeded,
			AmountRaised: need.AmountRaised,
		})
	}

	return nil
}

// syncDonationStatus re-derives a donation's status from the ledger and stores it
// when it changed. It returns the ledger total it derived from.
func syncDonationStatus(ctx context.Context, uow UnitOfWork, donation *models.Donation) (decimal.Decimal, error) {
	allocated, err := uow.AllocationRepository().SumByDonation(ctx, donation.ID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to sum allocations for donation %d: %w", donation.ID, err)
	}

	status := models.DeriveDonationStatus(donation.Amount, allocated)
	if status == donation.Status {
		return allocated, nil
	}

	if err := uow.DonationRepository().UpdateStatus(ctx, donation.ID, status); err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to update donation status: %w", err)
	}

	uow.EventBus().Publish(events.DonationStatusChangedEvent{
		DonationID: donation.ID,
		DonorRef:   donation.DonorRef,
		OldStatus:  donation.Status,
		NewStatus:  status,
	})
	donation.Status = status

	return allocated, nil
}
