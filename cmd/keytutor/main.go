// Package main provides the CLI entrypoint for keytutor.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/config"
	"github.com/verte-zerg/keytutor/internal/logger"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/remote"
	"github.com/verte-zerg/keytutor/internal/store"
)

var (
	displayKeyboard     bool
	displayFingerHints  bool
	displayShowMistakes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keytutor",
		Short:         "Touch typing tutor",
		Long:          "Touch typing tutor with guided lessons, timed typing tests and progress stats.\nWithout a subcommand a typing test is started.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}
	addTestFlags(rootCmd)

	rootCmd.PersistentFlags().BoolVar(&displayKeyboard, "keyboard", true, "show the virtual keyboard")
	rootCmd.PersistentFlags().BoolVar(&displayFingerHints, "finger-hints", true, "name the finger for the next key")
	rootCmd.PersistentFlags().BoolVar(&displayShowMistakes, "show-mistakes", true, "highlight mistyped characters")

	rootCmd.AddCommand(newLessonCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newCustomCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newCertificateCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func displayConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.DisplayConfig {
	applyBoolConfig(cmd, "keyboard", &displayKeyboard, fileCfg.Display.Keyboard)
	applyBoolConfig(cmd, "finger-hints", &displayFingerHints, fileCfg.Display.FingerHints)
	applyBoolConfig(cmd, "show-mistakes", &displayShowMistakes, fileCfg.Display.ShowMistakes)
	return model.DisplayConfig{
		Keyboard:     displayKeyboard,
		FingerHints:  displayFingerHints,
		ShowMistakes: displayShowMistakes,
	}
}

func newLogger(fileCfg config.FileConfig) (*zap.Logger, error) {
	cfg := logger.Config{
		Level:  config.DefaultLogLevel,
		Format: config.DefaultLogFormat,
		File:   config.DefaultLogPath(),
	}
	if fileCfg.Log.Level != nil {
		cfg.Level = *fileCfg.Log.Level
	}
	if fileCfg.Log.Format != nil {
		cfg.Format = *fileCfg.Log.Format
	}
	if fileCfg.Log.File != nil {
		cfg.File = *fileCfg.Log.File
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func newSyncClient(fileCfg config.FileConfig) *remote.Client {
	var endpoint, token string
	timeout := config.DefaultSyncTimeout
	if fileCfg.Sync.Endpoint != nil {
		endpoint = *fileCfg.Sync.Endpoint
	}
	if fileCfg.Sync.Token != nil {
		token = *fileCfg.Sync.Token
	}
	if fileCfg.Sync.Timeout != nil {
		timeout = *fileCfg.Sync.Timeout
	}
	return remote.New(endpoint, token, time.Duration(timeout)*time.Second)
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
