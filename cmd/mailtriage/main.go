package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nhle/mail-triage/internal/api"
	"github.com/nhle/mail-triage/internal/app"
	"github.com/nhle/mail-triage/internal/logging"
	"github.com/nhle/mail-triage/internal/model"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mailtriage:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	client := api.NewClient(
		cfg.API.BaseURL,
		time.Duration(cfg.API.TimeoutSec)*time.Second,
		logrus.NewEntry(logger),
	)

	log := logger.WithField("api", client.BaseURL())
	log.Info("starting")

	m := app.New(client, client, *cfg, log)
	defer m.Shutdown()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	log.Info("stopped")
	return nil
}
