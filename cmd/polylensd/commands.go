package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-ibc/polylens/api"
	"github.com/open-ibc/polylens/config"
	"github.com/open-ibc/polylens/logger"
	"github.com/open-ibc/polylens/monitor"
)

const (
	flagHome = "home"

	version = "0.2.0"
)

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(versionCmd())
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the latency monitor daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)

			app, err := buildApp(cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(app.Job, app.Alerts, cfg.QueryServerPort, log)
			if err := server.Start(); err != nil {
				return err
			}
			defer server.Stop()
			log.Info().Int("port", cfg.QueryServerPort).Msg("query server listening")

			runner := monitor.NewRunner(app.Job, time.Duration(cfg.ScanIntervalSeconds)*time.Second, log)
			runner.Start(ctx)
			return nil
		},
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one alert scan pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)

			app, err := buildApp(cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Job.Run(cmd.Context())
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <channel-id> <chain> <client-type>",
		Short: "Reconstruct a channel's packets and print them as JSON",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)

			clientType, err := config.ParseClientType(args[2])
			if err != nil {
				return err
			}

			app, err := buildApp(cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			packets, err := app.Job.SearchChannel(cmd.Context(), args[0], args[1], clientType)
			if err != nil {
				return err
			}
			if len(packets) == 0 {
				fmt.Println("no packets found")
				return nil
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(packets)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print polylensd version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("polylensd %s\n", version)
		},
	}
}

// loadConfig reads the config file under the home directory, falling back to
// the embedded defaults when none exists yet.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(home)
	if err == nil {
		cfg.MonitorHome = home
		return &cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	defaultCfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	defaultCfg.MonitorHome = home
	return defaultCfg, nil
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".polylens"
	}
	return filepath.Join(home, ".polylens")
}
