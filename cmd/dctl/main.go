package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/classify"
	"github.com/standardbeagle/dctlforge/internal/config"
	"github.com/standardbeagle/dctlforge/internal/dctlfile"
	"github.com/standardbeagle/dctlforge/internal/parser"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

// Version is set at build time
var Version = "dev"

// app carries the state shared by every subcommand
type app struct {
	configPath   string
	showVersion  bool
	showSettings bool

	cfg      *config.Config
	eventBus *events.EventBus
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "dctl",
		Short: "Parse, generate and edit DaVinci Resolve DCTL scripts",
		Long: `dctl works with the DEFINE_UI_PARAMS declarations of DaVinci Resolve DCTL color transforms.

Basic Usage:
  dctl parse look.dctl                  # List parameters grouped by category
  dctl parse look.dctl --filter re:^lift
  dctl generate project.json -o look.dctl
  dctl edit look.dctl --set gain=1.5 -o graded.dctl
  dctl edit look.dctl -i                # Interactive editor
  dctl validate *.dctl

Services:
  dctl serve                            # HTTP + WebSocket API (default 127.0.0.1:7477)
  dctl mcp                              # MCP tools over stdio
  dctl watch project.json               # Regenerate on every save

Configuration is read from ~/.dctl/config.toml (see --settings).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.eventBus != nil {
				a.eventBus.Shutdown()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "dctl version %s\n", Version)
				return nil
			}
			if a.showSettings {
				fmt.Fprint(cmd.OutOrStdout(), a.cfg.Display())
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.dctl/config.toml)")
	rootCmd.Flags().BoolVarP(&a.showVersion, "version", "v", false, "Show version information")
	rootCmd.Flags().BoolVar(&a.showSettings, "settings", false, "Show the effective configuration")

	rootCmd.AddCommand(
		newNewCmd(a),
		newGenerateCmd(a),
		newParseCmd(a),
		newEditCmd(a),
		newValidateCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.eventBus = events.NewEventBus()
	a.subscribeLogging()
	return nil
}

// subscribeLogging reports domain events on stderr so stdout stays usable for output
func (a *app) subscribeLogging() {
	a.eventBus.Subscribe(events.FileExported, func(e events.Event) {
		log.Printf("exported %s", e.Source)
	})
	a.eventBus.Subscribe(events.WatchError, func(e events.Event) {
		log.Printf("watch error on %s: %v", e.Source, e.Data["error"])
	})
}

func (a *app) limits() dctlfile.Limits {
	return dctlfile.Limits{
		Extension: a.cfg.GetExtension(),
		MaxSize:   int64(a.cfg.GetMaxFileSizeMB()) * 1024 * 1024,
	}
}

func (a *app) parser() (*parser.Parser, error) {
	rules := a.cfg.GetRulesFile()
	if rules == "" {
		return parser.New(), nil
	}
	c, err := classify.LoadRules(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier rules: %w", err)
	}
	return parser.New(parser.WithClassifier(c)), nil
}

func (a *app) publish(t events.EventType, source string, data map[string]interface{}) {
	if a.eventBus != nil {
		a.eventBus.Publish(events.Event{Type: t, Source: source, Data: data})
	}
}
