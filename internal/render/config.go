// Package render turns analysis results into text reports, chart series and
// terminal tables. Every function takes an explicit Config.
package render

import (
	"github.com/chrissnell/airfieldwx/internal/analysis"
	"github.com/chrissnell/airfieldwx/pkg/config"
)

const genericFontFamily = "sans-serif"

// Config carries the display options for one render call.
type Config struct {
	FontFamily          string
	FallbackFonts       []string
	TransitionSeparator string
	LocalOffsetHours    int
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		TransitionSeparator: analysis.TransitionSeparator,
		LocalOffsetHours:    config.DefaultLocalOffsetHours,
	}
}

// FromConfigData builds a render Config from the loaded configuration.
func FromConfigData(c *config.ConfigData) Config {
	cfg := DefaultConfig()
	cfg.FontFamily = c.Render.FontFamily
	cfg.FallbackFonts = c.Render.FallbackFonts
	if c.Render.TransitionSeparator != "" {
		cfg.TransitionSeparator = c.Render.TransitionSeparator
	}
	cfg.LocalOffsetHours = c.Airfield.LocalOffset()
	return cfg
}

func (c Config) separator() string {
	if c.TransitionSeparator == "" {
		return analysis.TransitionSeparator
	}
	return c.TransitionSeparator
}

// ResolveFont picks the font family for charts. The configured family wins;
// otherwise the first fallback present in available; otherwise a generic
// sans-serif family.
func (c Config) ResolveFont(available []string) string {
	if c.FontFamily != "" {
		return c.FontFamily
	}

	have := make(map[string]bool, len(available))
	for _, f := range available {
		have[f] = true
	}
	for _, f := range c.FallbackFonts {
		if have[f] {
			return f
		}
	}
	return genericFontFamily
}
