// Package main is erjctl, the operator CLI for the eRJ backend.
// It talks to the same store as the API server and runs every command as an
// admin, so it can be used to bootstrap users, apply migrations and pull
// exports without going through HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pkordes/erj-report/internal/config"
	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/policy"
	"github.com/pkordes/erj-report/internal/repo"
	"github.com/pkordes/erj-report/internal/service"
)

// operator is the actor every CLI command runs as.
var operator = domain.Actor{ID: "erjctl", Name: "erjctl", Role: domain.RoleAdmin}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "erjctl:", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfg config.Config
	log *slog.Logger
	out io.Writer
}

// services are the services on an open store.
type services struct {
	reports   *service.ReportService
	users     *service.UserService
	phonebook *service.PhonebookService
	discounts *service.DiscountService
}

func (a *app) options() repo.Options {
	return repo.Options{
		Driver:      a.cfg.DBDriver,
		DatabaseURL: a.cfg.DatabaseURL,
		SQLitePath:  a.cfg.SQLitePath,
		Migrate:     a.cfg.MigrateOnStart,
	}
}

// open connects to the store and builds the services. The caller must call
// the returned close function.
func (a *app) open(ctx context.Context) (services, func(), error) {
	store, closeStore, err := repo.Open(ctx, a.options())
	if err != nil {
		return services{}, nil, err
	}

	var authz service.Authorizer
	if a.cfg.AuthzEnabled {
		p, err := policy.New(ctx)
		if err != nil {
			closeStore()
			return services{}, nil, err
		}
		authz = p
	}

	return services{
		reports:   service.NewReportService(repo.NewReportRepo(store), authz, a.log),
		users:     service.NewUserService(repo.NewUserRepo(store), authz, a.log),
		phonebook: service.NewPhonebookService(repo.NewPhonebookRepo(store), authz, a.log, a.cfg.PhonebookURL),
		discounts: service.NewDiscountService(repo.NewDiscountRepo(store), authz, a.log),
	}, closeStore, nil
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout}

	root := &cobra.Command{
		Use:           "erjctl",
		Short:         "Operator tool for the eRJ report store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
				level = slog.LevelInfo
			}
			a.cfg = cfg
			a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
			cmd.SetContext(domain.WithActor(cmd.Context(), operator))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		newMigrateCmd(a),
		newReportCmd(a),
		newUserCmd(a),
		newPhonebookCmd(a),
		newDiscountCmd(a),
	)
	return root
}
