package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/logging"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/ui"
	"github.com/tgienger/taskdeck/internal/ui/views"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The interface owns the terminal, so logs go to a file
	logger, closeLog := logging.NewFile(cfg.Log.Path, cfg.Log.Level)
	defer closeLog()

	prefs, err := db.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer prefs.Close()

	client, err := api.New(cfg.Server.URL, cfg.Server.Timeout, logger)
	if err != nil {
		return err
	}

	logger.Info("starting", "version", build.Version, "server", cfg.Server.URL)

	app := ui.NewApp(views.Deps{
		Session:     session.NewStore(client, logger),
		Backend:     client,
		Logger:      logger,
		PageSize:    cfg.UI.PageSize,
		RecentLimit: cfg.UI.RecentLimit,
	}, prefs)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
