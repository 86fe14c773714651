package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	captureinadapter "usagetrail/internal/modules/capture/adapter/in"
	captureoutadapter "usagetrail/internal/modules/capture/adapter/out"
	captureservice "usagetrail/internal/modules/capture/service"
	captureusecase "usagetrail/internal/modules/capture/usecase"
	dailyinadapter "usagetrail/internal/modules/daily/adapter/in"
	dailyoutadapter "usagetrail/internal/modules/daily/adapter/out"
	dailydomain "usagetrail/internal/modules/daily/domain"
	dailyservice "usagetrail/internal/modules/daily/service"
	dailyusecase "usagetrail/internal/modules/daily/usecase"
	reportinadapter "usagetrail/internal/modules/report/adapter/in"
	reportoutadapter "usagetrail/internal/modules/report/adapter/out"
	reportservice "usagetrail/internal/modules/report/service"
	reportusecase "usagetrail/internal/modules/report/usecase"
	sourceinadapter "usagetrail/internal/modules/source/adapter/in"
	sourceoutadapter "usagetrail/internal/modules/source/adapter/out"
	sourceout "usagetrail/internal/modules/source/port/out"
	sourceservice "usagetrail/internal/modules/source/service"
	sourceusecase "usagetrail/internal/modules/source/usecase"
	"usagetrail/internal/platform/clock"
	"usagetrail/internal/platform/config"
	"usagetrail/internal/platform/id"
	"usagetrail/internal/platform/logging"
	"usagetrail/internal/platform/metrics"
	"usagetrail/internal/platform/sqlitedb"
)

// HiddenPackagesFile is an optional YAML list of packages hidden on top of
// the configured ones.
const HiddenPackagesFile = "hidden-packages.yaml"

const filterTTL = time.Minute

type App struct {
	Config  config.Config
	Logger  hclog.Logger
	Metrics *metrics.Metrics

	CaptureCLI captureinadapter.CLIHandler
	DailyCLI   dailyinadapter.CLIHandler
	SourceCLI  sourceinadapter.CLIHandler
	ReportCLI  reportinadapter.CLIHandler
	Reprocess  *dailyinadapter.ReprocessScheduler

	db *sql.DB
}

func New(ctx context.Context, cfg config.Config, logger hclog.Logger) (*App, error) {
	logger = logging.OrNull(logger)
	clk := clock.SystemClock{}
	ids := id.UUID{}
	m := metrics.New()
	loc := cfg.Location()

	db, err := sqlitedb.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	eventLog := sourceoutadapter.NewSQLiteEventLog(db, loc)
	reader, err := sourceReader(cfg, eventLog, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sourceUC := sourceusecase.NewInteractor(sourceservice.NewSourceService(reader, eventLog, sourceservice.Options{
		Decoder:  sourceoutadapter.NewNDJSONSource(cfg.Source.Path),
		Follower: sourceoutadapter.NewFileFollower(logger),
		Location: loc,
		Logger:   logger,
		Metrics:  m,
	}))

	filter := dailyoutadapter.NewCachedFilterProvider(cfg.HiddenPackages, filepath.Join(cfg.DataDir, HiddenPackagesFile), filterTTL)

	dailyUC := dailyusecase.NewInteractor(
		dailyservice.NewDailyService(
			dailydomain.NewProcessor(dailydomain.Thresholds(cfg.Thresholds), loc),
			dailyoutadapter.NewSourceEvents(sourceUC),
			dailyoutadapter.NewSQLiteDayStore(db),
			filter,
			clk,
			logger,
		),
		loc,
		cfg.Parallelism,
		ids,
		m,
	)

	drafts := captureoutadapter.NewFileDraftStore(cfg.DraftPath)
	aggregator := captureservice.NewAggregator(captureoutadapter.NewSQLiteScrollSessionStore(db), captureservice.AggregatorOptions{
		MergeGap:      cfg.Thresholds.ScrollMergeGap,
		FlushInterval: cfg.Capture.FlushInterval,
		Clock:         clk,
		Location:      loc,
		Logger:        logger,
		Metrics:       m,
	})
	manager := captureservice.NewSessionManager(drafts, aggregator, captureservice.SessionManagerOptions{
		Location:      loc,
		DraftDebounce: cfg.Capture.DraftDebounce,
		Scheduler:     clock.SystemScheduler{},
		Logger:        logger,
		Metrics:       m,
	})
	captureUC := captureusecase.NewInteractor(manager, aggregator, drafts, filter, clk, logger, m)

	reportUC := reportusecase.NewInteractor(reportservice.NewReportService(
		reportoutadapter.NewSQLiteReportReader(db),
		reportoutadapter.NewMarkdownNoteStore(cfg.ReportDir, loc),
		loc,
		logger,
	))

	var reprocess *dailyinadapter.ReprocessScheduler
	if cfg.ReprocessSchedule != "" {
		reprocess = dailyinadapter.NewReprocessScheduler(dailyUC, cfg.ReprocessSchedule, loc, clk, logger)
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		CaptureCLI: captureinadapter.NewCLIHandler(captureUC),
		DailyCLI:   dailyinadapter.NewCLIHandler(dailyUC),
		SourceCLI:  sourceinadapter.NewCLIHandler(sourceUC),
		ReportCLI:  reportinadapter.NewCLIHandler(reportUC),
		Reprocess:  reprocess,
		db:         db,
	}, nil
}

func sourceReader(cfg config.Config, eventLog sourceout.EventLog, logger hclog.Logger) (sourceout.EventReader, error) {
	switch cfg.Source.Kind {
	case config.SourceSQLite, "":
		return eventLog, nil
	case config.SourceNDJSON:
		return sourceoutadapter.NewNDJSONSource(cfg.Source.Path), nil
	case config.SourcePlugin:
		return sourceoutadapter.NewPluginSource(cfg.Source.PluginBinary, cfg.Source.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %s", cfg.Source.Kind)
	}
}

func (a *App) Close() error {
	var errs []error
	if a.Reprocess != nil {
		errs = append(errs, a.Reprocess.Stop())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
