package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"adminlite/internal/config"
	"adminlite/internal/database"
	"adminlite/internal/logger"
	"adminlite/internal/repositories"
	"adminlite/internal/server"
	"adminlite/internal/services"
	"adminlite/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "adminlite",
		Short:         "Schema-driven admin console for a Postgres database",
		Long:          `Browse, sort and edit the rows of any table through a JSON API or from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
		RunE: a.runServe,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "path to a YAML config file")
	flags.Int("port", 8080, "HTTP port")
	flags.String("database-url", "", "Postgres connection URL")
	flags.String("schema", "public", "schema holding the introspection functions")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the admin API server",
			RunE:  a.runServe,
		},
		&cobra.Command{
			Use:   "tables",
			Short: "List the tables and their display columns",
			RunE:  a.runTables,
		},
		a.describeCmd(),
		a.rowsCmd(),
		&cobra.Command{
			Use:   "install-rpc",
			Short: "Install the list_tables and describe_table functions",
			RunE:  a.runInstall,
		},
		a.tokenCmd(),
	)

	return root
}

func (a *app) describeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the resolved schema of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, store *repositories.StoreRepository, _ *pgxpool.Pool) error {
				schemas := services.NewSchemaService(store, a.log, a.cfg.Schema.Concurrency)
				schema, err := schemas.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				return renderSchema(cmd.OutOrStdout(), schema, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")
	return cmd
}

func (a *app) rowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rows <table>",
		Short: "Print the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, store *repositories.StoreRepository, _ *pgxpool.Pool) error {
				schemas := services.NewSchemaService(store, a.log, a.cfg.Schema.Concurrency)
				schema, err := schemas.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				records, err := services.NewRecordService(store, a.log).FetchRows(ctx, schema, a.cfg.Rows.Limit)
				if err != nil {
					return err
				}
				renderRows(cmd.OutOrStdout(), schema, records)
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 100, "maximum number of rows")
	return cmd
}

func (a *app) tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token with the configured JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := utils.GenerateJWT(subject, role, ttl, []byte(a.cfg.Auth.JWTSecret))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "adminlite", "token subject")
	cmd.Flags().StringVar(&role, "role", "admin", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func (a *app) runTables(cmd *cobra.Command, args []string) error {
	return a.withStore(cmd.Context(), func(ctx context.Context, store *repositories.StoreRepository, _ *pgxpool.Pool) error {
		schemas := services.NewSchemaService(store, a.log, a.cfg.Schema.Concurrency)
		tables, err := schemas.ListSchemas(ctx)
		if err != nil {
			return err
		}
		renderTables(cmd.OutOrStdout(), tables)
		return nil
	})
}

func (a *app) runInstall(cmd *cobra.Command, args []string) error {
	return a.withStore(cmd.Context(), func(ctx context.Context, _ *repositories.StoreRepository, pool *pgxpool.Pool) error {
		if err := database.InstallIntrospection(ctx, pool, a.cfg.Schema.Name, a.log); err != nil {
			return err
		}

		catalog := repositories.NewCatalogRepository(pool)
		missing, err := catalog.MissingFunctions(ctx, a.cfg.Schema.Name)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("functions still missing after install: %v", missing)
		}

		tables, err := catalog.BaseTables(ctx, a.cfg.Schema.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed list_tables and describe_table in %q (%d tables)\n", a.cfg.Schema.Name, len(tables))
		return nil
	})
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, a.cfg.Database, a.log)
	if err != nil {
		return err
	}
	defer pool.Close()

	a.warnMissingFunctions(ctx, pool)

	db := database.OpenDB(pool)
	defer db.Close()

	srv, err := server.NewServer(ctx, a.cfg, repositories.NewStoreRepository(db, a.cfg.Schema.Name), a.log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server gracefully ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Error("Server shutdown failed")
		return err
	}
	a.log.Info("Server exiting")
	return nil
}

func (a *app) warnMissingFunctions(ctx context.Context, pool *pgxpool.Pool) {
	missing, err := repositories.NewCatalogRepository(pool).MissingFunctions(ctx, a.cfg.Schema.Name)
	if err != nil {
		a.log.WithError(err).Warn("Could not check introspection functions")
		return
	}
	if len(missing) > 0 {
		a.log.WithField("missing", missing).Warn("Introspection functions not installed, run adminlite install-rpc")
	}
}

func (a *app) withStore(ctx context.Context, fn func(ctx context.Context, store *repositories.StoreRepository, pool *pgxpool.Pool) error) error {
	pool, err := database.Connect(ctx, a.cfg.Database, a.log)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := database.OpenDB(pool)
	defer db.Close()

	return fn(ctx, repositories.NewStoreRepository(db, a.cfg.Schema.Name), pool)
}
