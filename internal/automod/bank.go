package automod

import (
	"strings"

	"luna-guard/internal/utils"
)

// Bank evaluates messages against the enabled detectors of their guild.
type Bank struct {
	tracker  *Tracker
	locks    *utils.KeyedMutex
	commands CommandMatcher
}

func NewBank(tracker *Tracker, commands CommandMatcher) *Bank {
	return &Bank{
		tracker:  tracker,
		locks:    utils.NewKeyedMutex(),
		commands: commands,
	}
}

// Evaluate returns the verdict of the first enabled detector that fires.
// Evaluation is serialized per guild and author so window updates for rapid
// messages of one user never interleave.
func (b *Bank) Evaluate(msg Message, cfg Resolved) (Verdict, bool) {
	if !b.Eligible(msg) {
		return Verdict{}, false
	}

	unlock := b.locks.Lock(msg.GuildID + ":" + msg.AuthorID)
	defer unlock()

	e := &evaluation{msg: msg, cfg: cfg, tracker: b.tracker}
	for _, d := range detectors {
		if !cfg.Enabled(d.feature) {
			continue
		}
		if description, ok := d.check(e); ok {
			return Verdict{Type: d.feature, Description: description}, true
		}
	}
	return Verdict{}, false
}

// Eligible filters out bot authors, direct messages and bot commands.
func (b *Bank) Eligible(msg Message) bool {
	if msg.AuthorBot || msg.AuthorID == "" || msg.GuildID == "" {
		return false
	}
	return !b.commands.Match(msg.Content)
}

// CommandMatcher recognizes prefix commands handled by the bot.
type CommandMatcher struct {
	prefix string
	names  map[string]struct{}
}

func NewCommandMatcher(prefix string, names []string) CommandMatcher {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = struct{}{}
	}
	return CommandMatcher{prefix: prefix, names: set}
}

func (m CommandMatcher) Match(content string) bool {
	if m.prefix == "" || !strings.HasPrefix(content, m.prefix) {
		return false
	}
	fields := strings.Fields(strings.TrimPrefix(content, m.prefix))
	if len(fields) == 0 {
		return false
	}
	_, ok := m.names[strings.ToLower(fields[0])]
	return ok
}
