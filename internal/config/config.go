// Package config resolves the server's startup configuration from CLI
// flags, environment variables, and an optional YAML file, in that order
// of precedence via viper bound to a cobra flag set.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is the prefix viper requires on every environment variable
// this package reads, e.g. AESDLOGD_PORT.
const EnvPrefix = "AESDLOGD"

// Config is every knob the server accepts. Only Daemon corresponds to a
// wire-protocol-affecting flag (-d, per the design's CLI surface); the
// rest are ambient (logging, metrics, ring sizing for tests).
type Config struct {
	Port          int    `mapstructure:"port"`
	MetricsAddr   string `mapstructure:"metrics-addr"`
	LogLevel      string `mapstructure:"log-level"`
	LogJSON       bool   `mapstructure:"log-json"`
	Daemon        bool   `mapstructure:"daemon"`
	RingCapacity  int    `mapstructure:"ring-capacity"`
	DelegatedPath string `mapstructure:"delegated-path"`
}

// Default returns the configuration used when no flag, environment
// variable, or config file overrides a field.
func Default() Config {
	return Config{
		Port:          9000,
		MetricsAddr:   "127.0.0.1:9090",
		LogLevel:      "info",
		LogJSON:       false,
		Daemon:        false,
		RingCapacity:  10,
		DelegatedPath: "/var/aesdlogd/log",
	}
}

// ParseLevel converts LogLevel into a zapcore.Level, defaulting to Info
// on an unrecognized string.
func (c Config) ParseLevel() zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Load builds the root cobra command, binds its flags to viper, and
// parses args (normally os.Args[1:]). run is called once with the
// resolved Config if parsing and flag binding succeed.
func Load(args []string, run func(Config) error) error {
	def := Default()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "aesdlogd",
		Short:         "Concurrent line-oriented record log accumulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			v.SetEnvPrefix(EnvPrefix)
			v.AutomaticEnv()

			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("config: read %s: %w", cfgFile, err)
				}
			}

			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("config: bind flags: %w", err)
			}

			cfg := def
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("config: unmarshal: %w", err)
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.BoolP("daemon", "d", def.Daemon, "fork after bind and detach from the controlling terminal")
	flags.Int("port", def.Port, "TCP port the wire protocol listens on")
	flags.String("metrics-addr", def.MetricsAddr, "address for the Prometheus metrics listener")
	flags.String("log-level", def.LogLevel, "debug, info, warn, or error")
	flags.Bool("log-json", def.LogJSON, "emit JSON-encoded logs instead of console-encoded")
	flags.Int("ring-capacity", def.RingCapacity, "records retained by the in-process ring (tests only; production leaves this at the default)")
	flags.String("delegated-path", def.DelegatedPath, "path to the external log device (delegated backend builds only)")
	flags.StringVar(&cfgFile, "config", "", "optional YAML config file")

	cmd.SetArgs(args)
	return cmd.Execute()
}
