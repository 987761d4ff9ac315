package cmd

import (
	"context"
	"fmt"

	"charityfund/config"
	"charityfund/database"
	"charityfund/events"
	"charityfund/repository"
	"charityfund/service"

	log "github.com/sirupsen/logrus"
)

// runtime holds the wired services shared by every command
type runtime struct {
	db          *database.DB
	bus         *events.Bus
	allocations service.AllocationService
	reports     service.ReportService
	registry    service.RegistryService
}

func openRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	log.Debug("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	bus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, bus)

	return &runtime{
		db:          db,
		bus:         bus,
		allocations: service.NewAllocationService(uowFactory, engineConfig(cfg)),
		reports:     service.NewReportService(uowFactory),
		registry:    service.NewRegistryService(uowFactory),
	}, nil
}

func engineConfig(cfg *config.Config) service.AllocationConfig {
	engine := service.DefaultAllocationConfig()
	engine.MaxAttempts = cfg.AllocationMaxAttempts
	engine.BeneficiaryPolicy = cfg.BeneficiaryPolicy
	return engine
}

func (r *runtime) Close() {
	r.db.Close()
}
