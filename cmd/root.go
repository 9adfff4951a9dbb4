// Package cmd implements the mxview command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/mxview/internal/config"
	"github.com/zjrosen/mxview/internal/log"
)

// DefaultConfigPath is where config:init writes when no path is given.
const DefaultConfigPath = ".mxview/config.yaml"

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mxview",
	Short: "A management server with virtual resource namespaces",
	Long: `mxview hosts a registry of management resources beside virtual namespaces
whose resources are computed on demand (an alphabet demo and a live
directory tree). Names, patterns and filters work across all of them.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mxview/config.yaml or ~/.config/mxview/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("primary.domain", d.Primary.Domain)
	v.SetDefault("primary.delegate_name", d.Primary.DelegateName)
	v.SetDefault("providers.alphabet.enabled", d.Providers.Alphabet.Enabled)
	v.SetDefault("providers.alphabet.domain", d.Providers.Alphabet.Domain)
	v.SetDefault("providers.files.enabled", d.Providers.Files.Enabled)
	v.SetDefault("providers.files.domain", d.Providers.Files.Domain)
	v.SetDefault("providers.files.root", d.Providers.Files.Root)
	v.SetDefault("providers.files.max_depth", d.Providers.Files.MaxDepth)
	v.SetDefault("providers.files.refresh_interval", d.Providers.Files.RefreshInterval)
	v.SetDefault("providers.files.resolve_timeout", d.Providers.Files.ResolveTimeout)
	v.SetDefault("providers.files.debounce", d.Providers.Files.Debounce)
	v.SetDefault("providers.files.watch", d.Providers.Files.Watch)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("log.enabled", d.Log.Enabled)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("filter.cache_ttl", d.Filter.CacheTTL)
	v.SetDefault("notifications.buffer_size", d.Notifications.BufferSize)
}

func initConfig() {
	if err := loadConfig(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
	}
}

// loadConfig reads configuration into cfg. Lookup order:
//  1. --config
//  2. .mxview/config.yaml (current directory)
//  3. ~/.config/mxview/config.yaml (user config)
//
// MXVIEW_* environment variables override file values, e.g.
// MXVIEW_SERVER_ADDR for server.addr.
func loadConfig(v *viper.Viper, file string) error {
	setDefaults(v)
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	v.SetEnvPrefix("MXVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else if _, err := os.Stat(DefaultConfigPath); err == nil {
		v.SetConfigFile(DefaultConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "mxview"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// Running on defaults is fine when no file exists anywhere.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	cfg = config.Defaults()
	return v.Unmarshal(&cfg)
}

// configPath returns the file config:set should edit.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return DefaultConfigPath
}

// initLogging starts the logger for commands that want it. Output goes to
// log.path when set, else to fallback. A nil fallback leaves logging off
// unless a path is configured.
func initLogging(fallback io.Writer) (func(), error) {
	noop := func() {}
	if !cfg.Log.Enabled {
		return noop, nil
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return noop, err
	}

	cleanup := noop
	switch {
	case cfg.Log.Path != "":
		c, err := log.Init(cfg.Log.Path)
		if err != nil {
			return noop, fmt.Errorf("initializing logging: %w", err)
		}
		cleanup = c
	case fallback != nil:
		log.InitWriter(fallback)
	default:
		return noop, nil
	}
	log.SetMinLevel(level)
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
