// Package main provides the entry point for the admission daemon.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahwlsqja/mempool-admission/node"
)

var rootCmd = &cobra.Command{
	Use:   "admissiond",
	Short: "Transaction admission daemon",
	Long:  "admissiond validates candidate transactions and admits them into the local pool.",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the admission node",
	RunE:  runStart,
}

func init() {
	flags := startCmd.Flags()
	flags.String("node-id", "node0", "Unique node identifier")
	flags.String("chain-id", "admission-chain", "Chain identifier")
	flags.String("listen", "0.0.0.0:26656", "gRPC listen address")
	flags.String("metrics", "0.0.0.0:26660", "Prometheus metrics address")
	flags.Bool("metrics-enabled", true, "Enable Prometheus metrics")
	flags.String("network-config", "./configs/network.yaml", "Network/milestone config file")
	flags.String("data-dir", "./data", "Data directory")
	flags.String("log-level", "info", "Log level (debug|info|error)")

	// 플래그는 ADMISSIOND_ 환경변수로도 설정 가능
	viper.SetEnvPrefix("ADMISSIOND")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)

	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg := node.DefaultConfig()
	cfg.NodeID = viper.GetString("node-id")
	cfg.ChainID = viper.GetString("chain-id")
	cfg.ListenAddr = viper.GetString("listen")
	cfg.MetricsAddr = viper.GetString("metrics")
	cfg.MetricsEnabled = viper.GetBool("metrics-enabled")
	cfg.NetworkConfigPath = viper.GetString("network-config")
	cfg.DataDir = viper.GetString("data-dir")
	cfg.LogLevel = viper.GetString("log-level")

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	if level, err := cmtlog.AllowLevel(cfg.LogLevel); err == nil {
		logger = cmtlog.NewFilter(logger, level)
	}

	n, err := node.NewNode(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}

	if err := n.Start(); err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	return n.Stop()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
