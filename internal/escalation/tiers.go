package escalation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"luna-guard/internal/config"
)

type Action string

const (
	ActionWarn    Action = "warn"
	ActionTimeout Action = "timeout"
	ActionMute    Action = "mute"
	ActionKick    Action = "kick"
)

var ErrInvalidTiers = errors.New("invalid escalation tiers")

// Tier applies from MinCount violations until the next tier starts.
type Tier struct {
	MinCount int
	Action   Action
	Duration time.Duration
}

// Label is the short form used in notices and metrics, e.g. "timeout 5m".
func (t Tier) Label() string {
	if t.Action == ActionTimeout {
		return fmt.Sprintf("%s %s", t.Action, shortDuration(t.Duration))
	}
	return string(t.Action)
}

// Tiers is ordered by MinCount. The last tier is absorbing.
type Tiers []Tier

func DefaultTiers() Tiers {
	return Tiers{
		{MinCount: 1, Action: ActionWarn},
		{MinCount: 2, Action: ActionTimeout, Duration: 5 * time.Minute},
		{MinCount: 3, Action: ActionTimeout, Duration: time.Hour},
		{MinCount: 4, Action: ActionMute},
		{MinCount: 5, Action: ActionKick},
	}
}

// TiersFrom converts configured tiers. The first tier must start at one
// violation so every count maps to an action.
func TiersFrom(cfg []config.TierConfig) (Tiers, error) {
	if len(cfg) == 0 {
		return DefaultTiers(), nil
	}
	tiers := make(Tiers, 0, len(cfg))
	for _, item := range cfg {
		tier := Tier{MinCount: item.MinCount, Action: Action(item.Action)}
		switch tier.Action {
		case ActionWarn, ActionMute, ActionKick:
		case ActionTimeout:
			tier.Duration = time.Duration(item.DurationMinutes) * time.Minute
			if tier.Duration <= 0 {
				return nil, fmt.Errorf("%w: timeout at %d needs a duration", ErrInvalidTiers, item.MinCount)
			}
			// platform maximum
			if tier.Duration > 28*24*time.Hour {
				tier.Duration = 28 * 24 * time.Hour
			}
		default:
			return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidTiers, item.Action)
		}
		tiers = append(tiers, tier)
	}
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinCount < tiers[j].MinCount })
	if tiers[0].MinCount != 1 {
		return nil, fmt.Errorf("%w: first tier must start at 1", ErrInvalidTiers)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MinCount == tiers[i-1].MinCount {
			return nil, fmt.Errorf("%w: duplicate min_count %d", ErrInvalidTiers, tiers[i].MinCount)
		}
	}
	return tiers, nil
}

// For returns the tier for a violation count.
func (t Tiers) For(count int) (Tier, bool) {
	var selected Tier
	found := false
	for _, tier := range t {
		if count < tier.MinCount {
			break
		}
		selected = tier
		found = true
	}
	return selected, found
}

func shortDuration(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return d.String()
	}
}
