package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/cuidd/internal/cmd/client"
	serverrun "github.com/rzbill/cuidd/internal/cmd/server"
	cfgpkg "github.com/rzbill/cuidd/internal/config"
	pebblestore "github.com/rzbill/cuidd/internal/storage/pebble"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cuidd",
		Short:         "cuidd identifier service CLI",
		Long:          "cuidd mints collision-resistant identifiers, records them per entity kind and serves them over HTTP and gRPC.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverCmd.AddCommand(newServerStartCommand())
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(clientcmd.NewCommands(clientcmd.HTTPBaseURLFromEnv)...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServerStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "start",
		Short:   "Start cuidd server (gRPC and HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			configPath, _ := cmd.Flags().GetString("config")

			mode, err := pebblestore.ParseFsyncMode(fsyncMode)
			if err != nil {
				return err
			}

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfgpkg.FromEnv(&cfg); err != nil {
				return err
			}
			// Flags win over file and environment.
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if logFormat != "" {
				cfg.LogFormat = logFormat
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				GRPCAddr:      grpcAddr,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("data-dir", os.Getenv("CUIDD_DATA_DIR"), "Data directory (if not specified, uses OS-specific application data directory)")
	cmd.Flags().String("grpc", ":50051", "gRPC listen address")
	cmd.Flags().String("http", ":8080", "HTTP listen address")
	cmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	cmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms")
	cmd.Flags().String("log-level", "", "Log level: debug|info|warn|error (overrides config)")
	cmd.Flags().String("log-format", "", "Log format: text|json (overrides config)")
	cmd.Flags().String("config", os.Getenv("CUIDD_CONFIG"), "Path to a JSON or YAML config file")
	return cmd
}
