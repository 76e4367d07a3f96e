package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"grandaura/internal/domain"
	"grandaura/internal/pkg/database"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/password"
	"grandaura/internal/repository/principalrepo"
	"grandaura/internal/service/authservice"
	"grandaura/internal/service/principalservice"
)

type rootOptions struct {
	databaseURL   string
	migrationsDir string
	dbTimeout     time.Duration
}

func newRootCmd(log logger.Logger) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the Grand Aura identity store schema and seed data",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection string")
	cmd.PersistentFlags().StringVar(&opts.migrationsDir, "dir", "./sql", "directory with migration files")
	cmd.PersistentFlags().DurationVar(&opts.dbTimeout, "db-timeout", 5*time.Second, "timeout for each store query")

	for _, name := range []string{"up", "down", "status", "version"} {
		cmd.AddCommand(newGooseCmd(name, opts, log))
	}
	cmd.AddCommand(newSeedCmd(opts, log))
	cmd.AddCommand(newHashCmd())
	return cmd
}

func (o *rootOptions) openDB(ctx context.Context, log logger.Logger) (*sql.DB, error) {
	if o.databaseURL == "" {
		return nil, errors.New("DATABASE_URL (or --database-url) must be set")
	}
	return database.NewPostgresDB(ctx, o.databaseURL, database.DefaultPoolOptions(), log)
}

func newGooseCmd(command string, opts *rootOptions, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: "Run goose " + command + " against the principal tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := opts.openDB(ctx, log)
			if err != nil {
				return err
			}
			defer db.Close()

			goose.SetLogger(gooseLogger{log: log})
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			if err := goose.RunContext(ctx, command, db, opts.migrationsDir); err != nil {
				return fmt.Errorf("goose %s: %w", command, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goose %s success\n", command)
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions, log logger.Logger) *cobra.Command {
	var (
		policy string
		cost   int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default staff principals in every empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			encoder, err := password.NewEncoder(password.Policy(policy), cost)
			if err != nil {
				return err
			}
			db, err := opts.openDB(ctx, log)
			if err != nil {
				return err
			}
			defer db.Close()

			stores := principalrepo.NewStores(db, opts.dbTimeout, log)
			emails := authservice.NewService(stores, encoder, authservice.Options{}, log)
			created, err := principalservice.NewService(stores, encoder, emails, nil, log).Seed(ctx, domain.DefaultSeedPrincipals())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d principal(s)\n", created)
			return nil
		},
	}
	cmd.Flags().StringVar(&policy, "policy", envOr("CREDENTIAL_POLICY", string(password.PolicyBcrypt)), "credential policy (bcrypt|plaintext)")
	cmd.Flags().IntVar(&cost, "cost", envInt("BCRYPT_COST", 0), "bcrypt cost (0 = default)")
	return cmd
}

func newHashCmd() *cobra.Command {
	var (
		policy string
		cost   int
	)
	cmd := &cobra.Command{
		Use:   "hash <password>",
		Short: "Print the stored form of a credential under the given policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder, err := password.NewEncoder(password.Policy(policy), cost)
			if err != nil {
				return err
			}
			encoded, err := encoder.Encode(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
	cmd.Flags().StringVar(&policy, "policy", string(password.PolicyBcrypt), "credential policy (bcrypt|plaintext)")
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 = default)")
	return cmd
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(envOr(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// gooseLogger encaminha as mensagens do goose para o logger da aplicação.
type gooseLogger struct {
	log logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info(fmt.Sprintf(format, v...), nil)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal("goose", fmt.Errorf(format, v...))
}
