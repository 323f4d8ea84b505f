// Command routined is the daily routine reminder daemon and its operator CLI.
//
// Usage:
//
//	routined serve
//	routined check
//	routined toggle 2026-08-31 pray_Fajr
//	routined regime ls|add|rm
//	routined study ls|add|rm

// @title routined API
// @version 1.0.0
// @description Daily routine tracker: recurring obligations, completion toggling, and reminder notification status.
// @host localhost:8400
// @BasePath /
// @schemes http
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/routinelab/routined/internal/api"
	"github.com/routinelab/routined/internal/calendar"
	"github.com/routinelab/routined/internal/catalog"
	"github.com/routinelab/routined/internal/completion"
	"github.com/routinelab/routined/internal/config"
	"github.com/routinelab/routined/internal/dedup"
	"github.com/routinelab/routined/internal/engine"
	"github.com/routinelab/routined/internal/notify"
	"github.com/routinelab/routined/internal/store"

	_ "github.com/routinelab/routined/docs" // swagger docs
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "routined",
		Short: "Daily routine reminder daemon",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(toggleCmd())
	root.AddCommand(regimeCmd())
	root.AddCommand(studyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// withState loads config, opens the state store, and hands both to fn.
func withState(fn func(ctx context.Context, cfg *config.Config, kv store.KV) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	kv, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	return fn(ctx, cfg, kv)
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder engine and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				clock := clockwork.NewRealClock()
				cat := catalog.Load(ctx, kv, logger)
				comp := completion.Load(ctx, kv, logger)
				ded := dedup.Load(ctx, kv, logger)

				sender, err := notify.New(cfg.NotifyDriver, logger)
				if err != nil {
					return err
				}
				logger.Info("Notification dispatcher ready",
					"driver", cfg.NotifyDriver,
					"permission", string(sender.Permission()))

				eng := engine.New(clock, cat, comp, ded, sender, cfg.TickInterval, logger)
				go eng.Run(ctx)

				router := api.NewRouter(api.Deps{
					KV:         kv,
					Catalog:    cat,
					Completion: comp,
					Dedup:      ded,
					Sender:     sender,
					Engine:     eng,
					Clock:      clock,
					Config:     cfg,
					Logger:     logger,
				})

				addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
				srv := &http.Server{
					Addr:         addr,
					Handler:      router,
					ReadTimeout:  10 * time.Second,
					WriteTimeout: 30 * time.Second,
					IdleTimeout:  60 * time.Second,
				}

				go func() {
					logger.Info("Starting routined API",
						"addr", addr,
						"environment", cfg.Environment,
						"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("Server failed", "error", err)
						os.Exit(1)
					}
				}()

				<-ctx.Done()
				logger.Info("Shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Shutdown error", "error", err)
				}
				logger.Info("Server stopped")
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// check command
// --------------------------------------------------------------------------

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one matcher pass against the current clock and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				clock := clockwork.NewRealClock()
				cat := catalog.Load(ctx, kv, logger)
				comp := completion.Load(ctx, kv, logger)
				ded := dedup.Load(ctx, kv, logger)

				sender, err := notify.New(cfg.NotifyDriver, logger)
				if err != nil {
					return err
				}

				eng := engine.New(clock, cat, comp, ded, sender, cfg.TickInterval, logger)
				n := eng.Evaluate(ctx, clock.Now())
				logger.Info("Check complete", "dispatched", n)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// toggle command
// --------------------------------------------------------------------------

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <date> <taskID>",
		Short: "Flip completion for an occurrence (e.g. toggle 2026-08-31 sport)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				date, taskID := args[0], args[1]
				if _, err := calendar.ParseDate(date); err != nil {
					return err
				}
				comp := completion.Load(ctx, kv, logger)
				done := comp.Toggle(ctx, date, taskID)
				logger.Info("Toggled", "date", date, "id", taskID, "done", done)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// regime commands
// --------------------------------------------------------------------------

func regimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regime",
		Short: "Manage the diet regime list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List regime items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				cat := catalog.Load(ctx, kv, logger)
				for i, item := range cat.Regime() {
					fmt.Printf("%d\t%s\n", i, item)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <item>",
		Short: "Append a regime item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				cat := catalog.Load(ctx, kv, logger)
				return cat.AddRegimeItem(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the regime item at an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("index must be an integer: %w", err)
				}
				cat := catalog.Load(ctx, kv, logger)
				return cat.RemoveRegimeItem(ctx, index)
			})
		},
	})

	return cmd
}

// --------------------------------------------------------------------------
// study commands
// --------------------------------------------------------------------------

func studyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Manage the weekly study timetable",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List study entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				cat := catalog.Load(ctx, kv, logger)
				for i, e := range cat.StudyEntries() {
					fmt.Printf("%d\t%s\t%s\t%s\n", i, e.Weekday, e.Time, e.Label)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <weekday> <time> <label>",
		Short: "Append a study entry (e.g. add Monday 17:30 'NLP revision')",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				cat := catalog.Load(ctx, kv, logger)
				return cat.AddStudyEntry(ctx, catalog.StudyEntry{
					Weekday: args[0],
					Time:    args[1],
					Label:   args[2],
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the study entry at an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(func(ctx context.Context, cfg *config.Config, kv store.KV) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("index must be an integer: %w", err)
				}
				cat := catalog.Load(ctx, kv, logger)
				return cat.RemoveStudyEntry(ctx, index)
			})
		},
	})

	return cmd
}
