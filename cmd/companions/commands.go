package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/companions/internal/augment"
	"github.com/kingrea/companions/internal/config"
	"github.com/kingrea/companions/internal/logging"
)

var (
	projectDir string
	logLevel   string
	locale     string

	rootCmd = &cobra.Command{
		Use:           "companions",
		Short:         "Generate companion content for marked entity definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the .companions directory in the project",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "List the marked entity definitions of every tenant without registering anything",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}

	augmentCmd = &cobra.Command{
		Use:   "augment",
		Short: "Load every tenant, register companions and report the result",
		Args:  cobra.NoArgs,
		RunE:  runAugment,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Browse tenants, definitions and companions in a terminal UI",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Augment tenants and reload them whenever their manifests change",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
)

var (
	spawnAll    bool
	showEntries bool
	metricsAddr string
)

func init() {
	cwd, _ := os.Getwd()
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", cwd, "project directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "override the configured tooltip locale")

	augmentCmd.Flags().BoolVar(&spawnAll, "spawn", false, "finalize one instance of every definition and show its back-references")
	augmentCmd.Flags().BoolVar(&showEntries, "entries", false, "show flavor entries built from the condition catalog")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address (overrides config)")

	rootCmd.AddCommand(initCmd, scanCmd, augmentCmd, inspectCmd, watchCmd)
}

// session bundles what every runtime-backed command needs.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	runtime  *augment.Runtime
	closeLog func() error
}

func openSession(quiet bool) (*session, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	level := cfg.Project.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if locale != "" {
		cfg.Project.Locale = locale
	}
	log, closeLog, err := logging.New(logging.Options{Level: level, Dir: cfg.LogsDir(), Quiet: quiet})
	if err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	rt := augment.New(augment.Options{Logger: log, Locale: cfg.Locale(), Registerer: registry})
	return &session{cfg: cfg, log: log, registry: registry, runtime: rt, closeLog: closeLog}, nil
}

func (s *session) Close() error {
	err := s.runtime.Close()
	_ = s.log.Sync()
	return errors.Join(err, s.closeLog())
}

func runInit(cmd *cobra.Command, _ []string) error {
	if err := config.InitDir(projectDir); err != nil {
		return fmt.Errorf("initialize %s: %w", config.Dir, err)
	}
	cfg, err := config.Load(projectDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\nPut tenant manifests in %s\n", cfg.StateDir, cfg.TenantsDir())
	return nil
}
