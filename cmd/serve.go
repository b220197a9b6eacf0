package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/mealtrack/internal/api"
	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/jon4hz/mealtrack/internal/tracker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Mealtrack server",
	Long:  `Start the Mealtrack server with the JSON API and the background jobs.`,
	Example: `mealtrack serve --config config.yml
mealtrack serve -c /path/to/config.yml --log-level debug
`,
	RunE: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint: errcheck

	tr, err := tracker.New(cfg, db)
	if err != nil {
		log.Fatalf("failed to create tracker: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := api.New(ctx, cfg, tr, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tr.Run(gctx)
	})
	g.Go(func() error {
		return server.Run(gctx)
	})

	log.Info("mealtrack started successfully")
	err = g.Wait()
	log.Info("shutting down gracefully...")

	if cerr := tr.Close(); cerr != nil {
		log.Error("failed to stop scheduler", "error", cerr)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// openDatabase is shared by the maintenance commands.
func openDatabase() (*database.Client, *config.Config, error) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
