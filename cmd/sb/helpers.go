package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/dashboard"
	"github.com/zulandar/switchboard/internal/db"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/registry"
	"github.com/zulandar/switchboard/internal/router"
	"gorm.io/gorm"
)

const defaultConfigPath = "switchboard.yaml"

// loadEnvironment loads config, coordinate registry, and the record store.
// AutoMigrate keeps the sqlite default zero-setup; it is a no-op once the
// schema exists.
func loadEnvironment(configPath string) (*config.Config, *registry.Registry, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	reg, err := registry.Load(cfg.RegistryPath, cfg.Screen.Width, cfg.Screen.Height)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load registry: %w", err)
	}

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return nil, nil, nil, err
	}

	return cfg, reg, gormDB, nil
}

// submitViaDaemon routes a submission through the daemon listening on the
// dashboard port, so the dedup window and health tracking span CLI
// invocations. ok is false when no daemon is running.
func submitViaDaemon(ctx context.Context, cfg *config.Config, req dashboard.SubmitRequest) (results []router.Result, ok bool, err error) {
	client := dashboard.NewClient(cfg.Dashboard.Port)
	results, err = client.Submit(ctx, req)
	if errors.Is(err, dashboard.ErrUnavailable) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return results, true, nil
}

// openPipeline builds a standalone one-shot delivery pipeline for CLI runs
// without a daemon. Callers must Stop the returned service.
func openPipeline(ctx context.Context, configPath string, out io.Writer) (*dispatch.Service, error) {
	cfg, reg, gormDB, err := loadEnvironment(configPath)
	if err != nil {
		return nil, err
	}
	return dispatch.NewService(ctx, dispatch.ServiceOpts{
		Config:   cfg,
		Registry: reg,
		DB:       gormDB,
		Out:      out,
	})
}
