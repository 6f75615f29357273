package automod

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	FeatureMentionSpam   = "mention_spam"
	FeatureWordFilter    = "word_filter"
	FeatureSpamDetection = "spam_detection"
	FeatureCapsFilter    = "caps_filter"
	FeatureInviteFilter  = "invite_filter"
	FeatureImageSpam     = "image_spam"
	FeatureEmojiSpam     = "emoji_spam"
	FeatureNewlineSpam   = "newline_spam"
	FeatureCharSpam      = "char_spam"
	FeatureRepeatedText  = "repeated_text"
	FeatureScamDetection = "scam_detection"
)

const (
	ThresholdSpam        = "spam_threshold"
	ThresholdSpamWindow  = "spam_interval"
	ThresholdMentions    = "mention_threshold"
	ThresholdCaps        = "caps_percentage"
	ThresholdImages      = "image_threshold"
	ThresholdImageWindow = "image_interval"
	ThresholdEmojis      = "emoji_threshold"
	ThresholdNewlines    = "newline_threshold"
	ThresholdCharRepeat  = "char_repeat_threshold"
	ThresholdWordRepeat  = "word_repeat_threshold"
)

var (
	ErrUnknownFeature   = errors.New("unknown automod feature")
	ErrUnknownThreshold = errors.New("unknown automod threshold")
	ErrOutOfRange       = errors.New("threshold out of range")
)

// Features lists every feature in detector priority order.
var Features = []string{
	FeatureMentionSpam,
	FeatureWordFilter,
	FeatureSpamDetection,
	FeatureCapsFilter,
	FeatureInviteFilter,
	FeatureImageSpam,
	FeatureEmojiSpam,
	FeatureNewlineSpam,
	FeatureCharSpam,
	FeatureRepeatedText,
	FeatureScamDetection,
}

// Range is the inclusive bound an admin may set a threshold to.
type Range struct {
	Min     float64
	Max     float64
	Default float64
	Integer bool
}

var Thresholds = map[string]Range{
	ThresholdSpam:        {Min: 1, Max: 20, Default: 5, Integer: true},
	ThresholdSpamWindow:  {Min: 5, Max: 30, Default: 5, Integer: true},
	ThresholdMentions:    {Min: 1, Max: 15, Default: 5, Integer: true},
	ThresholdCaps:        {Min: 50, Max: 100, Default: 70},
	ThresholdImages:      {Min: 1, Max: 10, Default: 3, Integer: true},
	ThresholdImageWindow: {Min: 5, Max: 60, Default: 10, Integer: true},
	ThresholdEmojis:      {Min: 1, Max: 20, Default: 10, Integer: true},
	ThresholdNewlines:    {Min: 1, Max: 20, Default: 10, Integer: true},
	ThresholdCharRepeat:  {Min: 3, Max: 20, Default: 10, Integer: true},
	ThresholdWordRepeat:  {Min: 2, Max: 20, Default: 5, Integer: true},
}

// ThresholdNames returns threshold keys in a stable display order.
func ThresholdNames() []string {
	return []string{
		ThresholdSpam,
		ThresholdSpamWindow,
		ThresholdMentions,
		ThresholdCaps,
		ThresholdImages,
		ThresholdImageWindow,
		ThresholdEmojis,
		ThresholdNewlines,
		ThresholdCharRepeat,
		ThresholdWordRepeat,
	}
}

func IsFeature(name string) bool {
	for _, feature := range Features {
		if feature == name {
			return true
		}
	}
	return false
}

// NormalizeFeature accepts "Spam Detection", "spam-detection" and similar spellings.
func NormalizeFeature(name string) (string, error) {
	key := normalizeKey(name)
	if !IsFeature(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownFeature, name)
	}
	return key, nil
}

// ValidateThreshold checks value against the admin range for name and
// returns the value to store.
func ValidateThreshold(name string, value float64) (string, float64, error) {
	key := normalizeKey(name)
	bounds, ok := Thresholds[key]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrUnknownThreshold, name)
	}
	if math.IsNaN(value) || value < bounds.Min || value > bounds.Max {
		return "", 0, fmt.Errorf("%w: %s must be between %g and %g", ErrOutOfRange, key, bounds.Min, bounds.Max)
	}
	if bounds.Integer {
		value = math.Round(value)
	}
	return key, value, nil
}

// ThresholdRange looks up the admin range for any accepted spelling of name.
func ThresholdRange(name string) (Range, bool) {
	bounds, ok := Thresholds[normalizeKey(name)]
	return bounds, ok
}

func normalizeKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	return key
}
