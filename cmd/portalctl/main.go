// Command portalctl administers the tournament portal.
//
// Usage:
//
//	portalctl migrate up
//	portalctl migrate down --steps 1
//	portalctl standings show --tournament <id> [--stage <id>]
//	portalctl standings show --group <id>
//	portalctl standings rebuild --group <id>
//	portalctl token --subject ops --ttl 12h
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Dosada05/tournament-portal/config"
	"github.com/Dosada05/tournament-portal/db"
	"github.com/Dosada05/tournament-portal/middleware"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/Dosada05/tournament-portal/services"
	"github.com/Dosada05/tournament-portal/standings"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Tournament portal administration",
		SilenceUsage: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			version, err := db.MigrateUp(cfg.DatabaseURL, cfg.MigrationsPath)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "version", version)
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return errors.New("--steps must be positive")
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			version, err := db.MigrateDown(cfg.DatabaseURL, cfg.MigrationsPath, steps)
			if err != nil {
				return err
			}
			logger.Info("migrations rolled back", "steps", steps, "version", version)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

// --------------------------------------------------------------------------
// standings
// --------------------------------------------------------------------------

func standingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Inspect or rebuild standings",
	}
	cmd.AddCommand(standingsShowCmd())
	cmd.AddCommand(standingsRebuildCmd())
	return cmd
}

func standingsShowCmd() *cobra.Command {
	var groupID, tournamentID, stageID string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a standings table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (groupID == "") == (tournamentID == "") {
				return errors.New("exactly one of --group or --tournament is required")
			}
			return withStandings(func(ctx context.Context, svc services.StandingsService) error {
				var (
					table standings.Table
					err   error
				)
				if groupID != "" {
					id, perr := uuid.Parse(groupID)
					if perr != nil {
						return fmt.Errorf("invalid --group: %w", perr)
					}
					table, err = svc.GroupStandings(ctx, id)
				} else {
					id, perr := uuid.Parse(tournamentID)
					if perr != nil {
						return fmt.Errorf("invalid --tournament: %w", perr)
					}
					var stage *uuid.UUID
					if stageID != "" {
						sid, perr := uuid.Parse(stageID)
						if perr != nil {
							return fmt.Errorf("invalid --stage: %w", perr)
						}
						stage = &sid
					}
					table, err = svc.TournamentStandings(ctx, id, stage)
				}
				if err != nil {
					return err
				}
				return standings.WriteText(cmd.OutOrStdout(), table)
			})
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "", "Group ID")
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament ID")
	cmd.Flags().StringVar(&stageID, "stage", "", "Viewed stage ID (tournament tables only)")
	return cmd
}

func standingsRebuildCmd() *cobra.Command {
	var groupID string
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute stored group standings from matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(groupID)
			if err != nil {
				return fmt.Errorf("invalid --group: %w", err)
			}
			return withStandings(func(ctx context.Context, svc services.StandingsService) error {
				start := time.Now()
				rows, err := svc.RebuildGroup(ctx, id)
				if err != nil {
					return err
				}
				logger.Info("group standings rebuilt",
					"group_id", id, "teams", len(rows), "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "", "Group ID")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

// withStandings opens the database and runs fn with a standings service built
// from the current configuration. Ctrl-C cancels the context.
func withStandings(fn func(ctx context.Context, svc services.StandingsService) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	eligibility, err := standings.ParseEligibility(cfg.StandingsEligibility)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conn, err := db.ConnectWithPool(cfg.DatabaseURL, 5*time.Second, db.CLIPool)
	if err != nil {
		return err
	}
	defer func(conn *sqlx.DB) {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}(conn)

	svc := services.NewStandingsService(repositories.NewPostgresStandingsRepository(conn), services.StandingsConfig{
		Derived:     cfg.StandingsMode == config.StandingsModeDerived,
		Eligibility: eligibility,
	}, logger)
	return fn(ctx, svc)
}

// --------------------------------------------------------------------------
// token
// --------------------------------------------------------------------------

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET_KEY")
			if secret == "" {
				return errors.New("JWT_SECRET_KEY environment variable is not set")
			}
			token, err := middleware.NewToken([]byte(secret), subject, middleware.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
