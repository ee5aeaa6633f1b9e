package main

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hupe1980/supportmesh"
	"github.com/hupe1980/supportmesh/commerce"
	anthropicmodel "github.com/hupe1980/supportmesh/model/anthropic"
	openaimodel "github.com/hupe1980/supportmesh/model/openai"

	"github.com/hupe1980/supportmesh/config"
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/store"
	"github.com/hupe1980/supportmesh/tool"
)

var (
	cfgFile string

	// loaded in PersistentPreRunE
	cfg config.Config
	log logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supportmesh",
		Short: "supportmesh — customer support conversation engine",
		Long: "Supportmesh routes customer messages to specialist workflows, drives them\n" +
			"through their steps and tools, and escalates to a human when automation\n" +
			"can't finish the job.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; real deployments set the environment directly.
			_ = godotenv.Load()

			cfg = config.Default()
			if cfgFile != "" {
				var err error
				cfg, err = config.Load(cfgFile)
				if err != nil {
					return err
				}
			}
			log = logging.New(logging.Config{Level: parseLevel(cfg.Log.Level), Format: cfg.Log.Format})
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newStore builds the conversation store selected by config.
func newStore() (core.ConversationStore, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.OpenSQLite(cfg.Store.Path, log)
	default:
		return store.NewMemory(), nil
	}
}

// newCompleter builds the model collaborator selected by config, bounded by
// the configured model timeout.
func newCompleter() model.Completer {
	var c model.Completer
	switch cfg.Model.Provider {
	case "openai":
		c = openaimodel.New(func(o *openaimodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
		})
	case "anthropic":
		c = anthropicmodel.New(func(o *anthropicmodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropicmodel.Model(cfg.Model.Name)
			}
		})
	default:
		c = seededMock()
	}
	return model.WithTimeout(c, cfg.Model.Timeout)
}

// newTools builds the commerce action set: the HTTP client when a base URL is
// configured, otherwise the seeded in-memory backend for offline demos.
func newTools() []tool.Tool {
	if cfg.Tools.BaseURL != "" {
		return commerce.NewClient(cfg.Tools.BaseURL).Tools()
	}
	return demoBackend().Tools()
}

func newMesh() (*supportmesh.SupportMesh, error) {
	st, err := newStore()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return supportmesh.New(func(o *supportmesh.Options) {
		o.Store = st
		o.Completer = newCompleter()
		o.Tools = newTools()
		o.Logger = log
		o.ToolTimeout = cfg.Tools.Timeout
	})
}
