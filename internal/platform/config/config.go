package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const FileName = "usagetrail.yaml"

type SourceKind string

const (
	SourceSQLite SourceKind = "sqlite"
	SourceNDJSON SourceKind = "ndjson"
	SourcePlugin SourceKind = "plugin"
)

type Source struct {
	Kind         SourceKind `yaml:"kind"`
	Path         string     `yaml:"path"`
	PluginBinary string     `yaml:"plugin_binary"`
}

// Thresholds parameterise the live and batch reconstruction.
type Thresholds struct {
	ScrollMergeGap       time.Duration `yaml:"scroll_merge_gap"`
	AppOpenDebounce      time.Duration `yaml:"app_open_debounce"`
	AppSwitchExtension   time.Duration `yaml:"app_switch_extension"`
	MinSignificantUsage  time.Duration `yaml:"min_significant_usage"`
	ScrollActiveWindow   time.Duration `yaml:"scroll_active_window"`
	ClickActiveWindow    time.Duration `yaml:"click_active_window"`
	TypingActiveWindow   time.Duration `yaml:"typing_active_window"`
	FocusActiveWindow    time.Duration `yaml:"focus_active_window"`
	InteractionWindow    time.Duration `yaml:"interaction_window"`
	GlanceThreshold      time.Duration `yaml:"glance_threshold"`
	CompulsiveThreshold  time.Duration `yaml:"compulsive_threshold"`
	NotificationLookback time.Duration `yaml:"notification_lookback"`
	UnlockDedupeWindow   time.Duration `yaml:"unlock_dedupe_window"`
	NightOwlEndHour      int           `yaml:"night_owl_end_hour"`
}

type Capture struct {
	DraftDebounce time.Duration `yaml:"draft_debounce"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	FollowPath    string        `yaml:"follow_path"`
	MetricsAddr   string        `yaml:"metrics_addr"`
}

type Config struct {
	DataDir           string     `yaml:"data_dir"`
	DBPath            string     `yaml:"db_path"`
	DraftPath         string     `yaml:"draft_path"`
	ReportDir         string     `yaml:"report_dir"`
	Timezone          string     `yaml:"timezone"`
	Source            Source     `yaml:"source"`
	HiddenPackages    []string   `yaml:"hidden_packages"`
	Thresholds        Thresholds `yaml:"thresholds"`
	Capture           Capture    `yaml:"capture"`
	ReprocessSchedule string     `yaml:"reprocess_schedule"`
	Parallelism       int        `yaml:"parallelism"`
	LogLevel          string     `yaml:"log_level"`
	LogJSON           bool       `yaml:"log_json"`

	location *time.Location
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ScrollMergeGap:       5 * time.Second,
		AppOpenDebounce:      3 * time.Second,
		AppSwitchExtension:   5 * time.Second,
		MinSignificantUsage:  0,
		ScrollActiveWindow:   3 * time.Second,
		ClickActiveWindow:    3 * time.Second,
		TypingActiveWindow:   5 * time.Second,
		FocusActiveWindow:    time.Second,
		InteractionWindow:    2 * time.Second,
		GlanceThreshold:      2 * time.Second,
		CompulsiveThreshold:  3 * time.Second,
		NotificationLookback: time.Minute,
		UnlockDedupeWindow:   time.Second,
		NightOwlEndHour:      4,
	}
}

func Default(dataDir string) Config {
	return Config{
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, "usagetrail.db"),
		DraftPath:  filepath.Join(dataDir, "session-draft.json"),
		ReportDir:  filepath.Join(dataDir, "reports"),
		Timezone:   "Local",
		Source:     Source{Kind: SourceSQLite},
		Thresholds: DefaultThresholds(),
		Capture: Capture{
			DraftDebounce: time.Second,
			FlushInterval: time.Minute,
		},
		ReprocessSchedule: "5 0 * * *",
		Parallelism:       4,
		LogLevel:          "info",
		location:          time.Local,
	}
}

// New loads configuration for dataDir: defaults, then usagetrail.yaml, then
// .env, then USAGETRAIL_* environment overrides.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)

	raw, err := os.ReadFile(filepath.Join(dataDir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", FileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read %s: %w", FileName, err)
	}

	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("USAGETRAIL_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("USAGETRAIL_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("USAGETRAIL_SOURCE_KIND"); v != "" {
		c.Source.Kind = SourceKind(v)
	}
	if v := os.Getenv("USAGETRAIL_SOURCE_PATH"); v != "" {
		c.Source.Path = v
	}
	if v := os.Getenv("USAGETRAIL_PLUGIN_BINARY"); v != "" {
		c.Source.PluginBinary = v
	}
	if v := os.Getenv("USAGETRAIL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("USAGETRAIL_METRICS_ADDR"); v != "" {
		c.Capture.MetricsAddr = v
	}
	if v := os.Getenv("USAGETRAIL_PARALLELISM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("USAGETRAIL_PARALLELISM: %w", err)
		}
		c.Parallelism = n
	}
	return nil
}

func (c *Config) finish() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %s: %w", c.Timezone, err)
	}
	c.location = loc

	switch c.Source.Kind {
	case SourceSQLite:
	case SourceNDJSON:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for ndjson source")
		}
	case SourcePlugin:
		if c.Source.PluginBinary == "" {
			return fmt.Errorf("source.plugin_binary is required for plugin source")
		}
	default:
		return fmt.Errorf("unknown source kind: %s", c.Source.Kind)
	}
	if c.Source.PluginBinary != "" && !filepath.IsAbs(c.Source.PluginBinary) {
		c.Source.PluginBinary = filepath.Clean(filepath.Join(c.DataDir, c.Source.PluginBinary))
	}

	if c.ReprocessSchedule != "" {
		if _, err := cron.ParseStandard(c.ReprocessSchedule); err != nil {
			return fmt.Errorf("invalid reprocess_schedule %q: %w", c.ReprocessSchedule, err)
		}
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	if c.Thresholds.NightOwlEndHour < 0 || c.Thresholds.NightOwlEndHour > 23 {
		return fmt.Errorf("thresholds.night_owl_end_hour must be within 0..23")
	}
	return nil
}

// Location is the timezone local dates are computed in.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
