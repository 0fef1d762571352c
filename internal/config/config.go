// Package config loads runtime settings and gameplay tuning through viper.
// Every value has a default; a config file and TANKGATES_* environment
// variables override them in that order.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Garsondee/tank-gates/internal/game"
	"github.com/spf13/viper"
)

// FileName is the config file base name searched for in the config dir.
const FileName = "tank-gates"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TANKGATES"

// AudioConfig holds the beep output settings.
type AudioConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate int     `mapstructure:"sampleRate"`
	Volume     float64 `mapstructure:"volume"` // master gain in beep's log2 units
}

// StoreConfig points at the run history database.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// InfluxConfig holds run-metric export settings.
type InfluxConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Protocol   string `mapstructure:"protocol"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Token      string `mapstructure:"token"`
	Org        string `mapstructure:"org"`
	Bucket     string `mapstructure:"bucket"`
	BackupPath string `mapstructure:"backupPath"`
}

// URL returns the server address built from protocol, host and port.
func (ic InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", ic.Protocol, ic.Host, ic.Port)
}

// SimConfig controls headless runs.
type SimConfig struct {
	Seed     int64 `mapstructure:"seed"`
	MaxTicks int   `mapstructure:"maxTicks"`
	Runs     int   `mapstructure:"runs"`
	Workers  int   `mapstructure:"workers"`
}

// Settings is the fully resolved configuration.
type Settings struct {
	LogLevel string       `mapstructure:"logLevel"`
	Controls string       `mapstructure:"controls"`
	Level    string       `mapstructure:"level"`
	Audio    AudioConfig  `mapstructure:"audio"`
	Store    StoreConfig  `mapstructure:"store"`
	Influx   InfluxConfig `mapstructure:"influx"`
	Sim      SimConfig    `mapstructure:"sim"`
	Tuning   game.Tuning  `mapstructure:"tuning"`
}

// Load registers defaults, reads FileName from configDir if present, binds
// the environment and returns the resolved settings. A missing file is not
// an error; an unreadable or malformed one is.
func Load(configDir string) (Settings, error) {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configDir != "" {
		viper.SetConfigName(FileName)
		viper.AddConfigPath(configDir)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	return s, nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("controls", "keyboard-mouse")
	viper.SetDefault("level", "demo.lvl")

	viper.SetDefault("audio.enabled", true)
	viper.SetDefault("audio.sampleRate", 44100)
	viper.SetDefault("audio.volume", -1.0)

	viper.SetDefault("store.enabled", true)
	viper.SetDefault("store.path", "./tank-gates.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "tank-gates")
	viper.SetDefault("influx.bucket", "runs")
	viper.SetDefault("influx.backupPath", "./tank-gates-metrics.lp.gz")

	viper.SetDefault("sim.seed", 1)
	viper.SetDefault("sim.maxTicks", 60*60*5)
	viper.SetDefault("sim.runs", 8)
	viper.SetDefault("sim.workers", 4)

	setTuningDefaults(game.DefaultTuning())
}

// setTuningDefaults registers one "tuning.<tag>" default per Tuning field,
// so game.DefaultTuning stays the single source of gameplay defaults.
func setTuningDefaults(tu game.Tuning) {
	v := reflect.ValueOf(tu)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		viper.SetDefault("tuning."+tag, v.Field(i).Interface())
	}
}

// GetString returns a raw string config value.
func GetString(key string) string {
	return viper.GetString(key)
}
