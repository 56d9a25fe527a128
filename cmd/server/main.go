// Package main is the entry point for the Paddock breeding engine. It wires
// the trait catalog, the genetic calculators, the interaction ledger and the
// milestone evaluator behind an HTTP API, with background jobs for milestone
// sweeps and database maintenance.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rosehill/paddock/internal/clients/grooms"
	"github.com/rosehill/paddock/internal/config"
	"github.com/rosehill/paddock/internal/database"
	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/events"
	"github.com/rosehill/paddock/internal/modules/breeding"
	breedinghandlers "github.com/rosehill/paddock/internal/modules/breeding/handlers"
	"github.com/rosehill/paddock/internal/modules/catalog"
	cataloghandlers "github.com/rosehill/paddock/internal/modules/catalog/handlers"
	"github.com/rosehill/paddock/internal/modules/genetics"
	"github.com/rosehill/paddock/internal/modules/grooming"
	groominghandlers "github.com/rosehill/paddock/internal/modules/grooming/handlers"
	"github.com/rosehill/paddock/internal/modules/horses"
	horsehandlers "github.com/rosehill/paddock/internal/modules/horses/handlers"
	"github.com/rosehill/paddock/internal/modules/milestones"
	milestonehandlers "github.com/rosehill/paddock/internal/modules/milestones/handlers"
	"github.com/rosehill/paddock/internal/modules/unlocks"
	unlockhandlers "github.com/rosehill/paddock/internal/modules/unlocks/handlers"
	"github.com/rosehill/paddock/internal/scheduler"
	"github.com/rosehill/paddock/internal/server"
	"github.com/rosehill/paddock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Paddock")

	// Databases. The ledger gets the durable profile: interaction history and
	// milestone records are the audit trail the whole engine depends on.
	stableDB, err := database.New(database.Config{
		Path:    cfg.StableDBPath(),
		Profile: database.ProfileStandard,
		Name:    "stable",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stable database")
	}
	defer stableDB.Close()

	ledgerDB, err := database.New(database.Config{
		Path:    cfg.LedgerDBPath(),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	for _, db := range []*database.DB{stableDB, ledgerDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Migration failed")
		}
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load trait catalog")
	}
	log.Info().
		Int("traits", len(cat.Traits())).
		Int("tasks", len(cat.Tasks())).
		Int("milestones", len(cat.Milestones())).
		Msg("Trait catalog loaded")

	clock := domain.SystemClock{}
	bus := events.NewBus(log)
	balance := genetics.DefaultBalance()

	// Repositories and services
	horseRepo := horses.NewRepository(stableDB.Conn(), log)
	groomRepo := grooming.NewRepository(ledgerDB.Conn(), log)
	groomSvc := grooming.NewService(groomRepo, horseRepo, cat, cfg.Location(), log)
	milestoneRepo := milestones.NewRepository(ledgerDB.Conn(), log)
	milestoneSvc := milestones.NewService(milestoneRepo, cat, groomSvc, horseRepo, log)

	breedingSvc := breeding.NewService(
		horseRepo,
		genetics.NewCalculator(cat, balance, log),
		genetics.NewResolver(cat, balance, log),
		clock,
		log,
	)

	unlockSvc := unlocks.NewService(unlocks.NewEvaluator(cat, log), horseRepo, groomSvc, milestoneRepo, log)
	groomsClient := grooms.NewClient(cfg.GroomsServiceURL, log)

	// Background jobs: nightly sweep closes milestone windows for horses
	// nobody evaluated, hourly checkpoint keeps the ledger WAL bounded.
	sched := scheduler.New(log)
	sweepJob := scheduler.NewMilestoneSweepJob(horseRepo, milestoneSvc, clock, log)
	if err := sched.AddJob("30 2 * * *", sweepJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register milestone sweep job")
	}
	if err := sched.AddJob("@hourly", scheduler.NewWALCheckpointJob([]*database.DB{stableDB, ledgerDB}, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:               log,
		Config:            cfg,
		StableDB:          stableDB,
		LedgerDB:          ledgerDB,
		Bus:               bus,
		BreedingHandlers:  breedinghandlers.NewHandler(breedingSvc, horseRepo, bus, log),
		GroomingHandlers:  groominghandlers.NewHandler(groomSvc, clock, bus, log),
		HorseHandlers:     horsehandlers.NewHandler(horseRepo, groomSvc, milestoneRepo, cat, clock, log),
		MilestoneHandlers: milestonehandlers.NewHandler(milestoneSvc, horseRepo, clock, bus, log),
		UnlockHandlers:    unlockhandlers.NewHandler(unlockSvc, horseRepo, groomsClient, bus, log),
		CatalogHandlers:   cataloghandlers.NewHandler(cat, log),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	// Catch up on any windows that closed while the service was down
	if err := sched.RunNow(sweepJob); err != nil {
		log.Error().Err(err).Msg("Startup milestone sweep failed")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Paddock stopped")
}
