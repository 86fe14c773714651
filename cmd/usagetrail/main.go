package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"usagetrail/internal/bootstrap"
	reportcli "usagetrail/internal/modules/report/adapter/in"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/config"
	"usagetrail/internal/platform/logging"
)

const stopTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "usagetrail",
		Short:         "Device usage capture and daily behaviour records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", ".", "data directory holding usagetrail.yaml and the database")

	root.AddCommand(newCaptureCmd(&dataDir))
	root.AddCommand(newIngestCmd(&dataDir))
	root.AddCommand(newProcessCmd(&dataDir))
	root.AddCommand(newReportCmd(&dataDir))
	root.AddCommand(newDraftCmd(&dataDir))
	root.AddCommand(newSourceCmd(&dataDir))
	return root
}

func loadApp(ctx context.Context, dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	return bootstrap.New(ctx, cfg, logger)
}

func today(app *bootstrap.App) string {
	return time.Now().In(app.Config.Location()).Format(time.DateOnly)
}

func newCaptureCmd(dataDir *string) *cobra.Command {
	var followPath string
	var fromStart bool

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Run the live capture daemon over a followed event file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := loadApp(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			logger := app.Logger.Named("daemon")

			path := followPath
			if path == "" {
				path = app.Config.Capture.FollowPath
			}
			if path == "" {
				return fmt.Errorf("%w: capture needs --follow or capture.follow_path", apperrors.ErrInvalidInput)
			}

			recovered, err := app.CaptureCLI.Recover(ctx)
			if err != nil {
				return fmt.Errorf("recover draft: %w", err)
			}
			if recovered.Recovered {
				logger.Info("recovered session draft", "package", recovered.PackageName, "scroll", recovered.ScrollAmount)
			}
			if err := app.CaptureCLI.Start(ctx); err != nil {
				return err
			}
			if app.Reprocess != nil {
				if err := app.Reprocess.Start(); err != nil {
					return err
				}
			}

			var server *http.Server
			if addr := app.Config.Capture.MetricsAddr; addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", app.Metrics.Handler())
				server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server", "error", err)
					}
				}()
			}

			events, err := app.SourceCLI.Follow(ctx, path, fromStart)
			if err != nil {
				return err
			}
			logger.Info("capture started", "follow", path)
			out, runErr := app.CaptureCLI.Run(ctx, events)

			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if server != nil {
				_ = server.Shutdown(stopCtx)
			}
			stopErr := app.CaptureCLI.Stop(stopCtx)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "capture stopped: handled=%d skipped=%d\n", out.Handled, out.Skipped)
			return errors.Join(runErr, stopErr)
		},
	}
	cmd.Flags().StringVar(&followPath, "follow", "", "NDJSON event file to follow (defaults to capture.follow_path)")
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "replay events already in the file")
	return cmd
}

func newIngestCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.ndjson>",
		Short: "Append NDJSON events to the local event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app, err := loadApp(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SourceCLI.Ingest(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "read=%d appended=%d skipped=%d\n", out.Read, out.Appended, out.Skipped)
			return nil
		},
	}
}

func newProcessCmd(dataDir *string) *cobra.Command {
	var date, from, to string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Rebuild daily records for a date or a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			app, err := loadApp(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()

			if from != "" || to != "" {
				if from == "" || to == "" {
					return fmt.Errorf("--from and --to must be used together")
				}
				out, err := app.DailyCLI.ProcessRange(ctx, from, to, dryRun)
				for _, day := range out.Days {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tevents=%d\tscroll=%d\tusage=%d\tunlocks=%d\tinsights=%d\n",
						day.Date, day.Events, day.ScrollSessions, day.AppUsageRows, day.UnlockSessions, day.Insights)
				}
				for _, f := range out.Failures {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s\tfailed: %s\n", f.Date, f.Error)
				}
				if err != nil {
					return fmt.Errorf("run %s: %d of %d dates failed", out.RunID, len(out.Failures), len(out.Days)+len(out.Failures))
				}
				return nil
			}

			if date == "" {
				date = today(app)
			}
			day, err := app.DailyCLI.ProcessDay(ctx, date, dryRun)
			if err != nil {
				return err
			}
			verb := "processed"
			if dryRun {
				verb = "computed"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: events=%d scroll=%d usage=%d unlocks=%d insights=%d screen_time=%s\n",
				verb, day.Date, day.Events, day.ScrollSessions, day.AppUsageRows, day.UnlockSessions, day.Insights,
				time.Duration(day.TotalUsageMillis)*time.Millisecond)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "local date YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&from, "from", "", "first date of a range")
	cmd.Flags().StringVar(&to, "to", "", "last date of a range")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute without writing")
	return cmd
}

func newReportCmd(dataDir *string) *cobra.Command {
	var date, from, to, pkg string
	var dates []string
	var writeMarkdown bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show stored daily records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			app, err := loadApp(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			w := cmd.OutOrStdout()

			switch {
			case strings.TrimSpace(pkg) != "":
				if len(dates) == 0 {
					dates = []string{today(app)}
				}
				out, err := app.ReportCLI.Package(ctx, pkg, dates)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(w, reportcli.RenderPackage(out))
			case from != "" || to != "":
				if from == "" || to == "" {
					return fmt.Errorf("--from and --to must be used together")
				}
				out, err := app.ReportCLI.Range(ctx, from, to)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(w, reportcli.RenderRange(out))
			default:
				if date == "" {
					date = today(app)
				}
				if writeMarkdown {
					out, err := app.ReportCLI.WriteNote(ctx, date)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprint(w, reportcli.RenderNote(out))
					return nil
				}
				out, err := app.ReportCLI.Day(ctx, date)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(w, reportcli.RenderDay(out))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "local date YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&from, "from", "", "first date of a range")
	cmd.Flags().StringVar(&to, "to", "", "last date of a range")
	cmd.Flags().StringVar(&pkg, "package", "", "report one package")
	cmd.Flags().StringSliceVar(&dates, "dates", nil, "dates for --package")
	cmd.Flags().BoolVar(&writeMarkdown, "markdown", false, "write the day note under the report directory")
	return cmd
}

func newDraftCmd(dataDir *string) *cobra.Command {
	draft := &cobra.Command{Use: "draft", Short: "Inspect the persisted live session draft"}
	draft.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the session draft, if any",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			app, err := loadApp(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			d, err := app.CaptureCLI.Draft(ctx)
			if errors.Is(err, apperrors.ErrNoDraft) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no draft")
				return nil
			}
			if err != nil {
				return err
			}
			loc := app.Config.Location()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "package: %s\nactivity: %s\nscroll: %d\nmeasured: %t\nstarted: %s\nupdated: %s\n",
				d.PackageName, d.ActivityName, d.ScrollAmount, d.Measured,
				time.UnixMilli(d.StartTime).In(loc).Format(time.RFC3339), time.UnixMilli(d.LastUpdateTime).In(loc).Format(time.RFC3339))
			return nil
		},
	})
	return draft
}

func newSourceCmd(dataDir *string) *cobra.Command {
	source := &cobra.Command{Use: "source", Short: "Event source commands"}
	source.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check that the configured event source answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			app, err := loadApp(ctx, *dataDir)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SourceCLI.Check(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "kind: %s\nname: %s\nversion: %s\n", out.Kind, out.Name, out.Version)
			return nil
		},
	})
	return source
}
