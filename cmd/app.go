package cmd

import (
	"context"
	"fmt"

	"github.com/GrainArc/TrialMap/config"
	"github.com/GrainArc/TrialMap/logger"
	"github.com/GrainArc/TrialMap/models"
	"github.com/GrainArc/TrialMap/services"
	"gorm.io/gorm"
)

// app holds the wired services shared by the subcommands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *gorm.DB
	hub      *services.MessageHub
	importer *services.ExperimentImportService
	plans    *services.PlanService
	resolver *services.PermissionResolver
	roles    *services.RoleService
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	resolver := services.DefaultPermissionResolver()
	if err := resolver.Validate(); err != nil {
		return nil, fmt.Errorf("permission tables are inconsistent: %w", err)
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := prepareDatabase(db, models.Migrate); err != nil {
		return nil, err
	}

	hub := services.NewMessageHub(log)
	hub.SetWriteTimeout(cfg.Messages.WriteTimeout)
	messenger := services.MultiMessenger{services.NewLogMessenger(log), hub}

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		hub:      hub,
		importer: services.NewExperimentImportService(services.NewGormStore(db), nil, messenger, log),
		plans:    services.NewPlanService(db),
		resolver: resolver,
		roles:    services.NewRoleService(db, resolver, cfg.Permission.EntityTypes, log),
	}
	if err := a.roles.SeedRoles(ctx); err != nil {
		a.close()
		return nil, err
	}
	log.Info("database ready", "driver", cfg.Database.Driver)
	return a, nil
}

// prepareDatabase runs migrate and closes db when it fails.
func prepareDatabase(db *gorm.DB, migrate func(*gorm.DB) error) error {
	if err := migrate(db); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return err
	}
	return nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	a.log.Sync()
}
