package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/cli"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

type postgresSource struct {
	*repository.LessonRepository
	settings *service.OrganizationSettingsService
}

func (s postgresSource) Config(ctx context.Context, organizationID string) (models.OrganizationConfig, error) {
	return s.settings.Config(ctx, organizationID)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	open := func(ctx context.Context) (cli.LessonSource, func(), error) {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		settings := service.NewOrganizationSettingsService(
			repository.NewOrganizationSettingsRepository(db), nil, nil, nil, logr,
			service.OrganizationSettingsServiceConfig{DefaultRoomTracking: cfg.Scheduling.RoomTrackingDefault},
		)
		source := postgresSource{LessonRepository: repository.NewLessonRepository(db), settings: settings}
		return source, func() { _ = db.Close() }, nil
	}

	if err := cli.NewRootCommand(open, logr).ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, cli.ErrViolations) {
			logr.Error("command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
