package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/mudlark/mudlark/pkg/highlight"
	"github.com/mudlark/mudlark/pkg/segment"
)

// Config holds all client configuration.
type Config struct {
	Theme       ThemeConfig      `toml:"theme"`
	Highlights  []HighlightRule  `toml:"highlights"`
	Keybindings KeybindingConfig `toml:"keybindings"`
	Display     DisplayConfig    `toml:"display"`
}

// ThemeConfig defines the client's color scheme. Values are
// lipgloss-compatible: 256-palette indexes or hex.
type ThemeConfig struct {
	Name          string     `toml:"name"`
	LineNumbers   string     `toml:"line_numbers"`
	StatusBar     string     `toml:"status_bar"`
	StatusBarText string     `toml:"status_bar_text"`
	Spans         SpanColors `toml:"spans"`
}

// SpanColors defines the default color for each span classification
// the game protocol emits. Highlight rules override these per match.
type SpanColors struct {
	Link    string `toml:"link"`
	Monster string `toml:"monster"`
	Spell   string `toml:"spell"`
	Speech  string `toml:"speech"`
	System  string `toml:"system"`
}

// HighlightRule is the on-disk form of one highlight pattern.
type HighlightRule struct {
	Pattern   string  `toml:"pattern"`
	Fast      bool    `toml:"fast"`
	Stream    string  `toml:"stream,omitempty"`
	Fg        string  `toml:"fg,omitempty"`
	Bg        string  `toml:"bg,omitempty"`
	Bold      bool    `toml:"bold,omitempty"`
	WholeLine bool    `toml:"whole_line,omitempty"`
	Replace   *string `toml:"replace,omitempty"`
	Sound     string  `toml:"sound,omitempty"`
	Volume    float64 `toml:"volume,omitempty"`
}

// KeybindingConfig allows customizing keybindings.
type KeybindingConfig struct {
	Quit       []string `toml:"quit"`
	ScrollUp   []string `toml:"scroll_up"`
	ScrollDown []string `toml:"scroll_down"`
	PageUp     []string `toml:"page_up"`
	PageDown   []string `toml:"page_down"`
	Top        []string `toml:"top"`
	Bottom     []string `toml:"bottom"`
	Goto       []string `toml:"goto"`
	Search     []string `toml:"search"`
	NextMatch  []string `toml:"next_match"`
	PrevMatch  []string `toml:"prev_match"`
	Stream     []string `toml:"stream"`
	RawMode    []string `toml:"raw_mode"`
	Follow     []string `toml:"follow"`
	Reload     []string `toml:"reload"`
}

// DisplayConfig holds display options.
type DisplayConfig struct {
	ShowLineNumbers bool `toml:"show_line_numbers"`
	WrapLines       bool `toml:"wrap_lines"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme: ThemeConfig{
			Name:          "subtle",
			LineNumbers:   "240",
			StatusBar:     "236",
			StatusBarText: "252",
			Spans: SpanColors{
				Link:    "81",  // light blue
				Monster: "214", // orange
				Spell:   "135", // purple
				Speech:  "114", // green
				System:  "244", // gray
			},
		},
		Keybindings: KeybindingConfig{
			Quit:       []string{"q", "ctrl+c"},
			ScrollUp:   []string{"k", "up"},
			ScrollDown: []string{"j", "down"},
			PageUp:     []string{"b", "pgup", "ctrl+u"},
			PageDown:   []string{"f", "pgdown", "ctrl+d", " "},
			Top:        []string{"g", "home"},
			Bottom:     []string{"G", "end"},
			Goto:       []string{":"},
			Search:     []string{"/"},
			NextMatch:  []string{"n"},
			PrevMatch:  []string{"N"},
			Stream:     []string{"s"},
			RawMode:    []string{"tab"},
			Follow:     []string{"F"},
			Reload:     []string{"r"},
		},
		Display: DisplayConfig{
			ShowLineNumbers: false,
			WrapLines:       false,
		},
	}
}

// Rules converts the configured highlights into engine rules.
func (c *Config) Rules() []highlight.Rule {
	rules := make([]highlight.Rule, 0, len(c.Highlights))
	for _, h := range c.Highlights {
		rules = append(rules, highlight.Rule{
			Pattern:     h.Pattern,
			Fast:        h.Fast,
			Stream:      h.Stream,
			Fg:          segment.Color(h.Fg),
			Bg:          segment.Color(h.Bg),
			Bold:        h.Bold,
			WholeLine:   h.WholeLine,
			Replace:     h.Replace,
			SoundFile:   h.Sound,
			SoundVolume: h.Volume,
		})
	}
	return rules
}

// Load loads config from the given path, or the default path when
// empty, falling back to defaults if no file exists.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = getConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to the default path.
func Save(cfg *Config) error {
	configPath := getConfigPath()
	if configPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// getConfigPath returns the config file path.
func getConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mudlark", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mudlark", "config.toml")
}

// GetConfigPath exports the config path for user reference.
func GetConfigPath() string {
	return getConfigPath()
}
