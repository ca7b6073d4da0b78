package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dgnsrekt/starchart/internal/starchart"
)

// PanelConfig captures everything the chart panel and its CLI need.
type PanelConfig struct {
	ProxyURL      string
	CachePath     string
	SnapshotDir   string
	CDPURL        string
	LogFile       string
	LogLevel      string
	FallbacksFile string

	Place       string
	Location    starchart.Location
	View        starchart.ViewParams
	Range       starchart.DateRange
	InitialDate string
	LabelsOn    bool
	Fallbacks   []starchart.FallbackCandidate
}

const (
	defaultPanelConfigPath = "~/.config/starchart/config.toml"
	defaultProxyURL        = "http://127.0.0.1:5050"
	defaultCachePath       = "~/.config/starchart/cache.toml"
	defaultSnapshotDir     = "~/.local/share/starchart/prints"
	defaultPanelLogFile    = "~/.local/state/starchart/panel.log"
	defaultPlace           = "Monterey, CA"
)

// DefaultPanelConfigPath returns the default config file location.
func DefaultPanelConfigPath() string {
	return defaultPanelConfigPath
}

type rawPanelConfig struct {
	ProxyURL      string                `toml:"proxy_url"`
	CachePath     string                `toml:"cache_path"`
	SnapshotDir   string                `toml:"snapshot_dir"`
	CDPURL        string                `toml:"cdp_url"`
	LogFile       string                `toml:"log_file"`
	LogLevel      string                `toml:"log_level"`
	FallbacksFile string                `toml:"fallbacks_file"`
	Place         string                `toml:"place"`
	InitialDate   string                `toml:"initial_date"`
	LabelsOn      *bool                 `toml:"labels_on"`
	Location      *starchart.Location   `toml:"location"`
	View          *starchart.ViewParams `toml:"view"`
	Range         *starchart.DateRange  `toml:"range"`
}

// LoadPanel locates and parses the panel config, falling back to defaults when
// the file is missing.
func LoadPanel(path string) (PanelConfig, error) {
	resolved, err := resolvePath(path, defaultPanelConfigPath)
	if err != nil {
		return PanelConfig{}, err
	}

	var raw rawPanelConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return PanelConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return PanelConfig{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return PanelConfig{}, fmt.Errorf("open config: %w", err)
	}

	return raw.resolve(filepath.Dir(resolved))
}

func (raw rawPanelConfig) resolve(baseDir string) (PanelConfig, error) {
	cfg := PanelConfig{
		ProxyURL:      orDefault(raw.ProxyURL, defaultProxyURL),
		CachePath:     mustExpand(orDefault(raw.CachePath, defaultCachePath)),
		SnapshotDir:   mustExpand(orDefault(raw.SnapshotDir, defaultSnapshotDir)),
		CDPURL:        strings.TrimSpace(raw.CDPURL),
		LogFile:       mustExpand(orDefault(raw.LogFile, defaultPanelLogFile)),
		LogLevel:      strings.ToLower(orDefault(raw.LogLevel, "info")),
		FallbacksFile: strings.TrimSpace(raw.FallbacksFile),
		Place:         orDefault(raw.Place, defaultPlace),
		Location:      starchart.DefaultLocation,
		View:          starchart.DefaultView,
		Range:         starchart.DefaultRange,
		InitialDate:   orDefault(raw.InitialDate, starchart.DefaultInitialDate),
		LabelsOn:      true,
	}
	if raw.LabelsOn != nil {
		cfg.LabelsOn = *raw.LabelsOn
	}
	if raw.Location != nil {
		cfg.Location = *raw.Location
	}
	if raw.View != nil {
		cfg.View = *raw.View
	}
	if raw.Range != nil {
		cfg.Range = starchart.DateRange{
			Start: orDefault(raw.Range.Start, starchart.DefaultRange.Start),
			End:   orDefault(raw.Range.End, starchart.DefaultRange.End),
		}
	}

	if err := cfg.Range.Validate(); err != nil {
		return PanelConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if _, err := starchart.ParseDate(cfg.InitialDate); err != nil {
		return PanelConfig{}, fmt.Errorf("parse config: initial_date: %w", err)
	}

	cfg.Fallbacks = starchart.DefaultFallbacks()
	if cfg.FallbacksFile != "" {
		path := mustExpand(cfg.FallbacksFile)
		if !filepath.IsAbs(cfg.FallbacksFile) && !strings.HasPrefix(cfg.FallbacksFile, "~") {
			path = filepath.Join(baseDir, cfg.FallbacksFile)
		}
		fallbacks, err := LoadFallbacks(path)
		if err != nil {
			return PanelConfig{}, err
		}
		cfg.FallbacksFile = path
		cfg.Fallbacks = fallbacks
	}
	return cfg, nil
}

func orDefault(val, def string) string {
	if trimmed := strings.TrimSpace(val); trimmed != "" {
		return trimmed
	}
	return def
}

func resolvePath(path, def string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(def)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
