package main

import (
	"context"
	"fmt"
	"os"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/maintenance-tui/app"
	"github.com/deevus/maintenance-tui/config"
	"github.com/deevus/maintenance-tui/dashboard"
	"github.com/deevus/maintenance-tui/internal"
	"github.com/deevus/maintenance-tui/internal/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

type rootFlags struct {
	server string
	config string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorMsg("%v", err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "maintenance-tui",
		Short:         "Terminal console for industrial machine maintenance",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.server, "server", "", "server profile name from config")
	cmd.PersistentFlags().StringVar(&flags.config, "config", config.DefaultPath(), "path to config file")
	cmd.AddCommand(watchCmd(&flags), statusCmd(&flags), logoutCmd(&flags), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// runConsole starts the interactive UI. Connecting happens behind the
// connecting screen so a slow backend never blocks the terminal.
func runConsole(ctx context.Context, flags rootFlags) error {
	p, err := openProfile(flags, "")
	if err != nil {
		return err
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cache := dashboard.NewCache(nil)
	conn := newConnector(p, cache)
	defer conn.Close()

	root := app.New(app.Params{
		Connect: func(context.Context) (*internal.Services, error) {
			return conn.Connect(ctx)
		},
		Viewer:     p.session,
		Cache:      cache,
		States:     conn.States,
		ServerName: p.name,
		StaleTTL:   p.server.StaleTTL.D(),
	})
	defer root.Close()

	vxApp, err := vxfw.NewApp(vaxis.Options{})
	if err != nil {
		return fmt.Errorf("starting terminal: %w", err)
	}
	root.SetPostEvent(vxApp.PostEvent)

	if err := vxApp.Run(root); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

// openProfile loads the config, selects a server profile and installs the
// global logger. logPath overrides the configured log destination.
func openProfile(flags rootFlags, logPath string) (*profile, error) {
	cfg, err := config.LoadFrom(flags.config)
	if err != nil {
		return nil, err
	}

	name := flags.server
	if name == "" {
		names := cfg.ServerNames()
		if len(names) != 1 {
			return nil, fmt.Errorf("multiple servers configured, use --server (available: %v)", names)
		}
		name = names[0]
	}
	server, ok := cfg.Servers[name]
	if !ok {
		return nil, fmt.Errorf("server %q not found in config", name)
	}

	if logPath == "" {
		logPath = cfg.Log.Path
	}
	logger, err := log.InitLog(log.ParseLevel(cfg.Log.Level), logPath)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	return newProfile(name, server)
}
