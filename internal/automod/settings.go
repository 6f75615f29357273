package automod

import (
	"context"
	"strings"
)

// GuildConfig is the per-guild automod configuration. Missing map entries
// fall back to Defaults, so a zero GuildConfig behaves like a fresh guild.
type GuildConfig struct {
	GuildID      string
	Features     map[string]bool
	Thresholds   map[string]float64
	Words        []string
	LogChannelID string
}

// Defaults are the bot-wide values guild overrides are layered on.
type Defaults struct {
	Features   map[string]bool
	Thresholds map[string]float64
}

// ConfigSource loads the stored configuration for a guild. found is false
// when the guild never configured anything.
type ConfigSource interface {
	AutomodConfig(ctx context.Context, guildID string) (cfg GuildConfig, found bool, err error)
}

// NewDefaults builds defaults with every feature enabled and the built-in
// thresholds, then applies the given overrides. Unknown keys are ignored.
func NewDefaults(features map[string]bool, thresholds map[string]float64) Defaults {
	d := Defaults{
		Features:   make(map[string]bool, len(Features)),
		Thresholds: make(map[string]float64, len(Thresholds)),
	}
	for _, feature := range Features {
		d.Features[feature] = true
	}
	for name, bounds := range Thresholds {
		d.Thresholds[name] = bounds.Default
	}
	for name, enabled := range features {
		if key, err := NormalizeFeature(name); err == nil {
			d.Features[key] = enabled
		}
	}
	for name, value := range thresholds {
		if key, v, err := ValidateThreshold(name, value); err == nil {
			d.Thresholds[key] = v
		}
	}
	return d
}

// Resolved is a GuildConfig with defaults applied.
type Resolved struct {
	guild    GuildConfig
	defaults Defaults
}

func Resolve(guild GuildConfig, defaults Defaults) Resolved {
	return Resolved{guild: guild, defaults: defaults}
}

func (r Resolved) GuildID() string { return r.guild.GuildID }

func (r Resolved) LogChannelID() string { return r.guild.LogChannelID }

func (r Resolved) Words() []string { return r.guild.Words }

func (r Resolved) Enabled(feature string) bool {
	if enabled, ok := r.guild.Features[feature]; ok {
		return enabled
	}
	if enabled, ok := r.defaults.Features[feature]; ok {
		return enabled
	}
	return true
}

func (r Resolved) Threshold(name string) float64 {
	if value, ok := r.guild.Thresholds[name]; ok {
		return value
	}
	if value, ok := r.defaults.Thresholds[name]; ok {
		return value
	}
	return Thresholds[name].Default
}

func (r Resolved) Int(name string) int {
	return int(r.Threshold(name))
}

// AddWord appends word unless an entry equal ignoring case already exists.
func AddWord(words []string, word string) ([]string, bool) {
	word = strings.TrimSpace(word)
	if word == "" {
		return words, false
	}
	for _, existing := range words {
		if strings.EqualFold(existing, word) {
			return words, false
		}
	}
	return append(words, word), true
}

// RemoveWord drops the entry matching word ignoring case.
func RemoveWord(words []string, word string) ([]string, bool) {
	word = strings.TrimSpace(word)
	for i, existing := range words {
		if strings.EqualFold(existing, word) {
			out := make([]string, 0, len(words)-1)
			out = append(out, words[:i]...)
			return append(out, words[i+1:]...), true
		}
	}
	return words, false
}
