// ratecheck CLI - compare booked hotel rates against current availability.
//
// Usage:
//
//	checker run [--no-notify]
//	checker compare --input request.json [--format table|json]
//	checker compare --reservation booking.json --live
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"hotel_ratecheck/internal/adapters/homeassistant"
	"hotel_ratecheck/internal/adapters/marriott"
	"hotel_ratecheck/internal/adapters/observability"
	"hotel_ratecheck/internal/adapters/rabbitmq"
	redisad "hotel_ratecheck/internal/adapters/redis"
	"hotel_ratecheck/internal/app"
	"hotel_ratecheck/internal/compare"
	"hotel_ratecheck/internal/domain"
	"hotel_ratecheck/internal/shared"
	mysqlrepo "hotel_ratecheck/internal/storage/mysql"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "checker")

	a := &cli.App{
		Name:    "checker",
		Usage:   "Compare booked hotel rates against current availability",
		Version: version,
		Commands: []*cli.Command{
			runCommand(cfg),
			compareCommand(cfg),
		},
	}
	if err := a.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// RUN COMMAND
// =============================================================================

func runCommand(cfg shared.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Check every stored reservation once, persist the run and notify",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-notify", Usage: "Skip Home Assistant and RabbitMQ notifications"},
			&cli.IntFlag{Name: "workers", Value: cfg.Workers, Usage: "Reservations checked in parallel", EnvVars: []string{"CHECK_WORKERS"}},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			db, err := sql.Open("mysql", cfg.MySQLDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("mysql: %w", err)
			}
			if err := mysqlrepo.Migrate(ctx, db); err != nil {
				return err
			}
			repo := mysqlrepo.New(db)

			cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			defer cache.Close()
			var c2 domain.Cache = cache
			if err := cache.Ping(ctx); err != nil {
				log.Warn().Err(err).Msg("redis unavailable; run will not be cached")
				c2 = nil
			}

			source, err := marriott.New(cfg.MarriottBase, cfg.MarriottRPS)
			if err != nil {
				return err
			}
			var n domain.Notifier
			if !c.Bool("no-notify") {
				n = app.Notifiers{
					homeassistant.New(cfg.HAURL, cfg.HAToken, cfg.HAService),
					rabbitmq.New(cfg.RabbitURL),
				}
			}

			svc := app.NewCheckService(source, repo, repo, c2, n, c.Int("workers"), cfg.CacheTTL)
			run, err := svc.Run(ctx)
			if run.ID == "" {
				return err
			}
			if perr := printRun(os.Stdout, c.String("format"), run); perr != nil {
				return perr
			}
			return err
		},
	}
}

// =============================================================================
// COMPARE COMMAND
// =============================================================================

type compareInput struct {
	Reservation domain.ReservationConfig `json:"reservation"`
	Rates       []domain.RateRecord      `json:"rates"`
}

func compareCommand(cfg shared.Config) *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Run the comparison engine on a reservation and a rate list",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "JSON file with {reservation, rates}"},
			&cli.StringFlag{Name: "reservation", Aliases: []string{"r"}, Usage: "JSON file with a single reservation"},
			&cli.BoolFlag{Name: "live", Usage: "Fetch rates from Marriott instead of reading them from --input"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			var in compareInput
			switch {
			case c.String("input") != "":
				if err := readJSON(c.String("input"), &in); err != nil {
					return err
				}
			case c.String("reservation") != "":
				if !c.Bool("live") {
					return fmt.Errorf("--reservation needs --live to fetch rates")
				}
				if err := readJSON(c.String("reservation"), &in.Reservation); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --input or --reservation is required")
			}

			if c.Bool("live") {
				source, err := marriott.New(cfg.MarriottBase, cfg.MarriottRPS)
				if err != nil {
					return err
				}
				if in.Rates, err = source.FetchRates(c.Context, in.Reservation); err != nil {
					return err
				}
			}
			res, err := evaluate(in, c.Bool("live"))
			if err != nil {
				return err
			}
			return printResult(os.Stdout, c.String("format"), res)
		},
	}
}

var errNoRates = errors.New("no rates to compare: give --input with a rates list, or --live")

// evaluate reclassifies the input rates and runs the comparison. An empty
// offline rate list is an input mistake; an empty live fetch is a real answer.
func evaluate(in compareInput, live bool) (domain.ComparisonResult, error) {
	if len(in.Rates) == 0 && !live {
		return domain.ComparisonResult{}, errNoRates
	}
	return compare.Build(compare.ClassifyAll(in.Rates, in.Reservation.StayType), in.Reservation)
}

func readJSON(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(dst); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
