// Workdeck is a terminal dashboard for the project tracker backend.
//
// It mirrors the backend's project list, adds, edits, and deletes
// projects from a table view, and triggers the weekly Todoist sync.
// The backend is picked by environment: APP_ENV selects between the
// configured development and production base URLs, and starting
// without a base URL for the active environment is a fatal error.
//
// Usage:
//
//	# Start against the development backend
//	workdeck
//
//	# Start against production
//	workdeck --env production
//
//	# Configure via environment
//	API_BASE_URL_DEV=http://localhost:8000 workdeck
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workdeck/internal/api"
	"github.com/fyrsmithlabs/workdeck/internal/config"
	"github.com/fyrsmithlabs/workdeck/internal/loading"
	"github.com/fyrsmithlabs/workdeck/internal/logging"
	"github.com/fyrsmithlabs/workdeck/internal/projects"
	"github.com/fyrsmithlabs/workdeck/internal/ui"
	"github.com/fyrsmithlabs/workdeck/internal/uistate"
)

var (
	configPath string
	envName    string

	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "workdeck",
	Short: "Terminal dashboard for the project tracker",
	Long: `Workdeck is a terminal dashboard for the project tracker backend.

It shows the project portfolio, edits projects in place, and triggers
the weekly Todoist sync. The backend is selected by environment.

Examples:
  # Development backend (default)
  workdeck

  # Production backend
  workdeck --env production

  # Explicit config file
  workdeck --config ./workdeck.yaml`,
	Version: version,
	Args:    cobra.NoArgs,
	RunE:    runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/workdeck/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "backend environment: development or production (overrides APP_ENV)")
}

// runDashboard wires the client, synchronizer, tracker, and persisted
// UI state together and runs the BubbleTea program until quit.
func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if envName != "" {
		os.Setenv("APP_ENV", envName)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The log file and the state file live under the config dir.
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client, err := api.New(cfg.ActiveBaseURL(), log.Named("api"))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	store := uistate.NewStore(cfg.UI.StatePath)
	state, err := store.Load()
	if err != nil {
		// A shredded state file only costs the remembered layout.
		log.Warn(ctx, "failed to load UI state", zap.Error(err))
		state = uistate.State{}
	}

	tracker := loading.NewTracker(loading.DefaultLinger, nil)
	sync := projects.NewSynchronizer(client, tracker, log.Named("sync"))

	model := ui.New(ui.Options{
		Synchronizer:    sync,
		Store:           store,
		Logger:          log.Named("ui"),
		Env:             cfg.App.Env,
		RefreshInterval: cfg.UI.RefreshInterval.Duration(),
		ConfirmDelete:   cfg.UI.ConfirmDelete,
		InitialState:    state,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	tracker.OnChange(func(visible bool) {
		p.Send(ui.LoadingMsg{Visible: visible})
	})

	log.Info(ctx, "starting dashboard",
		zap.String("env", cfg.App.Env),
		zap.String("base_url", client.BaseURL()),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	log.Info(ctx, "dashboard closed")
	return nil
}
