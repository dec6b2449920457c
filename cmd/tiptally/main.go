/*
main.go - Application entry point

PURPOSE:
  The tiptally CLI: serves the HTTP API and offers CSV import/export and
  sample-data seeding against the same database file.

COMMANDS:
  serve              Start the HTTP server (graceful shutdown on SIGINT/SIGTERM)
  export [file]      Write all shifts as CSV to a file or stdout
  import <file>      Read shifts from a CSV file (--mode append|replace)
  seed               Insert a few sample shifts

CONFIGURATION:
  Flags first, environment second. A .env file in the working directory
  is loaded when present. Recognized variables:
    TIPTALLY_DB    SQLite database path (default: tiptally.db)
    PORT           HTTP server port (default: 8080)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  tiptally serve --port 3000 --db ./data/shifts.db
  tiptally export shifts.csv
  tiptally import shifts.csv --mode replace
  tiptally seed

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tiptally/shift-engine/api"
	"github.com/tiptally/shift-engine/csvio"
	"github.com/tiptally/shift-engine/store/sqlite"
)

var dbPath string

func main() {
	// .env is optional; flags and real env vars win.
	_ = godotenv.Load()
	initLogger()

	defaultDB := envOr("TIPTALLY_DB", "tiptally.db")

	rootCmd := &cobra.Command{
		Use:   "tiptally",
		Short: "Tip and shift earnings tracker",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB,
		`SQLite database path (use ":memory:" for in-memory)`)

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openStore() (*sqlite.Store, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", dbPath, err)
	}
	return store, nil
}

// =============================================================================
// SERVE
// =============================================================================

func serveCmd() *cobra.Command {
	defaultPort := 8080
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			defaultPort = p
		}
	}
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			handler := api.NewHandler(store)
			router := api.NewRouter(handler)

			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", port),
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				log.Info().Int("port", port).Str("db", dbPath).Msg("server starting")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info().Msg("shutting down server")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", defaultPort, "HTTP server port")
	return cmd
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all shifts as CSV (to stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListShifts(cmd.Context())
			if err != nil {
				return err
			}

			out := os.Stdout
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("failed to create %q: %w", args[0], err)
				}
				defer f.Close()
				out = f
			}

			if err := csvio.Export(out, records); err != nil {
				return err
			}
			if len(args) == 1 {
				log.Info().Int("shifts", len(records)).Str("file", args[0]).Msg("exported")
			}
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Read shifts from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := csvio.ParseMode(modeFlag)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %q: %w", args[0], err)
			}
			defer f.Close()

			result := csvio.Parse(f)
			for _, problem := range result.Errors {
				fmt.Fprintln(os.Stderr, problem)
			}
			if len(result.Rows) == 0 {
				return fmt.Errorf("no importable rows in %q", args[0])
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			inserted, err := csvio.Import(cmd.Context(), store, mode, result.Rows)
			if err != nil {
				return err
			}

			log.Info().
				Int("inserted", inserted).
				Int("skipped", result.Skipped).
				Str("mode", string(mode)).
				Msg("import finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "append", "append or replace")
	return cmd
}

// =============================================================================
// SEED
// =============================================================================

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a few sample shifts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SeedSampleData(cmd.Context()); err != nil {
				return err
			}
			log.Info().Str("db", dbPath).Msg("sample data inserted")
			return nil
		},
	}
}
