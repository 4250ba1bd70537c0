package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: AIRSIGHT_SCAN_DWELL=250ms.
const EnvPrefix = "AIRSIGHT"

// Config holds all application configuration.
type Config struct {
	Scan      ScanConfig      `mapstructure:"scan"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	OUI       OUIConfig       `mapstructure:"oui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ScanConfig struct {
	Interface string `mapstructure:"interface"`
	// Channels is the hop plan; empty means the default 2.4/5 GHz plan.
	Channels         []int         `mapstructure:"channels"`
	Dwell            time.Duration `mapstructure:"dwell"`
	ModeTimeout      time.Duration `mapstructure:"mode_timeout"`
	ChannelTimeout   time.Duration `mapstructure:"channel_timeout"`
	JoinTimeout      time.Duration `mapstructure:"join_timeout"`
	Duration         time.Duration `mapstructure:"duration"`
	Snaplen          int           `mapstructure:"snaplen"`
	Filter           string        `mapstructure:"filter"`
	PcapOut          string        `mapstructure:"pcap_out"`
	MaxCaptureErrors int           `mapstructure:"max_capture_errors"`
	PersistInterval  time.Duration `mapstructure:"persist_interval"`
}

type AnalysisConfig struct {
	EvilTwinSignalDelta int      `mapstructure:"evil_twin_signal_delta"`
	RogueThreshold      int      `mapstructure:"rogue_threshold"`
	RogueHighThreshold  int      `mapstructure:"rogue_high_threshold"`
	StrongSignalDBM     int      `mapstructure:"strong_signal_dbm"`
	HoneypotPatterns    []string `mapstructure:"honeypot_patterns"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type OUIConfig struct {
	DBPath    string `mapstructure:"db_path"`
	CacheSize int    `mapstructure:"cache_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	Tracing bool `mapstructure:"tracing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.interface", "wlan0")
	v.SetDefault("scan.channels", []int{})
	v.SetDefault("scan.dwell", "500ms")
	v.SetDefault("scan.mode_timeout", "10s")
	v.SetDefault("scan.channel_timeout", "5s")
	v.SetDefault("scan.join_timeout", "5s")
	v.SetDefault("scan.duration", "0s")
	v.SetDefault("scan.snaplen", 65536)
	v.SetDefault("scan.filter", "")
	v.SetDefault("scan.pcap_out", "")
	v.SetDefault("scan.max_capture_errors", 50)
	v.SetDefault("scan.persist_interval", "5s")

	v.SetDefault("analysis.evil_twin_signal_delta", 10)
	v.SetDefault("analysis.rogue_threshold", 4)
	v.SetDefault("analysis.rogue_high_threshold", 6)
	v.SetDefault("analysis.strong_signal_dbm", -30)
	v.SetDefault("analysis.honeypot_patterns", []string{"free wifi", "public", "guest", "open", "internet"})

	v.SetDefault("database.path", defaultDBPath())
	v.SetDefault("oui.db_path", "data/oui/ieee_oui.db")
	v.SetDefault("oui.cache_size", 1000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9100")

	v.SetDefault("telemetry.tracing", false)
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty path looks for
// airsight.yaml in the working directory and ~/.airsight; a missing file
// there is not an error.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("airsight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := dataDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// ParseChannels parses a comma separated channel list such as "1,6,11".
func ParseChannels(s string) ([]int, error) {
	var channels []int
	for _, part := range SplitList(s) {
		ch, err := strconv.Atoi(part)
		if err != nil || ch <= 0 {
			return nil, fmt.Errorf("invalid channel %q", part)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var items []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// dataDir is ~/.airsight, or "" when the home directory is unknown.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".airsight")
}

// defaultDBPath returns the default database path in the user's home
// directory, falling back to the working directory.
func defaultDBPath() string {
	dir := dataDir()
	if dir == "" {
		return "airsight.db"
	}
	return filepath.Join(dir, "airsight.db")
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
