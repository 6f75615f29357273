package automod

import (
	"strings"
	"testing"
	"time"
)

func newTestBank() *Bank {
	return NewBank(NewTracker(100, time.Minute), NewCommandMatcher("!", []string{"ping", "help"}))
}

func only(feature string, thresholds map[string]float64) Resolved {
	features := make(map[string]bool, len(Features))
	for _, f := range Features {
		features[f] = f == feature
	}
	return Resolve(GuildConfig{GuildID: "g1", Features: features, Thresholds: thresholds}, NewDefaults(nil, nil))
}

func message(content string, at time.Time) Message {
	return Message{ID: "m1", GuildID: "g1", ChannelID: "c1", AuthorID: "u1", Content: content, Timestamp: at}
}

func TestSpamBelowThresholdNeverFires(t *testing.T) {
	bank := newTestBank()
	cfg := only(FeatureSpamDetection, map[string]float64{ThresholdSpam: 3, ThresholdSpamWindow: 5})
	start := time.Unix(1000, 0)
	for i := 0; i < 3; i++ {
		if verdict, ok := bank.Evaluate(message("hello", start.Add(time.Duration(i)*time.Second)), cfg); ok {
			t.Fatalf("message %d unexpectedly flagged: %+v", i+1, verdict)
		}
	}
}

func TestSpamFiresOnceOnTriggeringMessage(t *testing.T) {
	bank := newTestBank()
	cfg := only(FeatureSpamDetection, map[string]float64{ThresholdSpam: 3, ThresholdSpamWindow: 5})
	start := time.Unix(1000, 0)
	fired := 0
	for i := 0; i < 4; i++ {
		verdict, ok := bank.Evaluate(message("hello", start.Add(time.Duration(i)*time.Second)), cfg)
		if ok {
			fired++
			if i != 3 {
				t.Fatalf("expected only the 4th message to fire, fired on %d", i+1)
			}
			if verdict.Type != FeatureSpamDetection {
				t.Fatalf("unexpected verdict type %q", verdict.Type)
			}
		}
	}
	if fired != 1 {
		t.Fatalf("expected exactly one violation, got %d", fired)
	}
}

func TestSpamWindowExpires(t *testing.T) {
	bank := newTestBank()
	cfg := only(FeatureSpamDetection, map[string]float64{ThresholdSpam: 2, ThresholdSpamWindow: 5})
	start := time.Unix(1000, 0)
	bank.Evaluate(message("a", start), cfg)
	bank.Evaluate(message("b", start.Add(1*time.Second)), cfg)
	if _, ok := bank.Evaluate(message("c", start.Add(10*time.Second)), cfg); ok {
		t.Fatalf("stale messages should have been pruned")
	}
}

func TestSpamWindowsArePerGuild(t *testing.T) {
	bank := newTestBank()
	cfg := only(FeatureSpamDetection, map[string]float64{ThresholdSpam: 1, ThresholdSpamWindow: 5})
	at := time.Unix(1000, 0)
	first := message("a", at)
	bank.Evaluate(first, cfg)
	other := message("b", at)
	other.GuildID = "g2"
	if _, ok := bank.Evaluate(other, cfg); ok {
		t.Fatalf("windows must not be shared across guilds")
	}
}

func TestCharRepeatThreshold(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	if _, ok := bank.Evaluate(message("aaaaaaaaaa", at), only(FeatureCharSpam, map[string]float64{ThresholdCharRepeat: 10})); !ok {
		t.Fatalf("expected 10 repeated chars to fire at threshold 10")
	}
	if _, ok := bank.Evaluate(message("aaaaaaaaaa", at), only(FeatureCharSpam, map[string]float64{ThresholdCharRepeat: 11})); ok {
		t.Fatalf("did not expect 10 repeated chars to fire at threshold 11")
	}
}

func TestRepeatedText(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := only(FeatureRepeatedText, map[string]float64{ThresholdWordRepeat: 5})
	verdict, ok := bank.Evaluate(message("go go go go go go extra words here", at), cfg)
	if !ok || verdict.Type != FeatureRepeatedText {
		t.Fatalf("expected repeated text violation, got %+v %v", verdict, ok)
	}
	if _, ok := bank.Evaluate(message("go go go extra words are here now please", at), cfg); ok {
		t.Fatalf("did not expect repeated text violation")
	}
	if _, ok := bank.Evaluate(message("go go go go go", at), only(FeatureRepeatedText, map[string]float64{ThresholdWordRepeat: 2})); ok {
		t.Fatalf("messages of 5 words or fewer are ignored")
	}
}

func TestCapsFilterLengthGate(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := only(FeatureCapsFilter, map[string]float64{ThresholdCaps: 70})
	if _, ok := bank.Evaluate(message("HELLOWORLDS", at), cfg); !ok {
		t.Fatalf("expected 11 uppercase chars to fire")
	}
	if _, ok := bank.Evaluate(message("HELLOWORL", at), cfg); ok {
		t.Fatalf("did not expect 9 uppercase chars to fire")
	}
	if _, ok := bank.Evaluate(message("Hello World Again", at), cfg); ok {
		t.Fatalf("did not expect mixed case to fire")
	}
}

func TestPriorityMentionBeforeWordFilter(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := Resolve(GuildConfig{
		GuildID:    "g1",
		Thresholds: map[string]float64{ThresholdMentions: 2},
		Words:      []string{"badword"},
	}, NewDefaults(nil, nil))
	msg := message("badword <@1> <@2> <@3>", at)
	msg.Mentions = []string{"1", "2", "3"}
	verdict, ok := bank.Evaluate(msg, cfg)
	if !ok {
		t.Fatalf("expected a verdict")
	}
	if verdict.Type != FeatureMentionSpam {
		t.Fatalf("expected mention spam first, got %q", verdict.Type)
	}

	cfg = Resolve(GuildConfig{GuildID: "g1", Words: []string{"badword"}, Features: map[string]bool{FeatureMentionSpam: false}}, NewDefaults(nil, nil))
	verdict, ok = bank.Evaluate(msg, cfg)
	if !ok || verdict.Type != FeatureWordFilter {
		t.Fatalf("expected word filter once mention spam is disabled, got %+v", verdict)
	}
}

func TestMentionCountsRoles(t *testing.T) {
	bank := newTestBank()
	cfg := only(FeatureMentionSpam, map[string]float64{ThresholdMentions: 2})
	msg := message("hi", time.Unix(1000, 0))
	msg.Mentions = []string{"1", "2"}
	if _, ok := bank.Evaluate(msg, cfg); ok {
		t.Fatalf("2 mentions must not exceed a threshold of 2")
	}
	msg.RoleMentions = []string{"r1"}
	if _, ok := bank.Evaluate(msg, cfg); !ok {
		t.Fatalf("user and role mentions should add up")
	}
}

func TestWordFilterWholeWord(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := onlyWithWords(FeatureWordFilter, []string{"Crétin"})
	if _, ok := bank.Evaluate(message("you are a CRETIN!", at), cfg); !ok {
		t.Fatalf("expected case and accent insensitive match")
	}
	if _, ok := bank.Evaluate(message("cretinous behaviour", at), cfg); ok {
		t.Fatalf("substring must not match")
	}
}

func onlyWithWords(feature string, words []string) Resolved {
	r := only(feature, nil)
	r.guild.Words = words
	return r
}

func TestInviteFilter(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := only(FeatureInviteFilter, nil)
	for _, content := range []string{
		"join discord.gg/abc123",
		"https://discord.com/invite/xyz",
		"come to DSC.GG/server",
	} {
		if _, ok := bank.Evaluate(message(content, at), cfg); !ok {
			t.Fatalf("expected invite in %q", content)
		}
	}
	if _, ok := bank.Evaluate(message("see https://discord.com/channels/1/2", at), cfg); ok {
		t.Fatalf("channel links are not invites")
	}
}

func TestImageSpamCountsAttachments(t *testing.T) {
	bank := newTestBank()
	cfg := only(FeatureImageSpam, map[string]float64{ThresholdImages: 3, ThresholdImageWindow: 10})
	at := time.Unix(1000, 0)
	msg := message("", at)
	msg.Attachments = 2
	if _, ok := bank.Evaluate(msg, cfg); ok {
		t.Fatalf("2 attachments should not fire")
	}
	msg.Timestamp = at.Add(2 * time.Second)
	if _, ok := bank.Evaluate(msg, cfg); !ok {
		t.Fatalf("4 attachments within the window should fire")
	}
	text := message("no files", at.Add(3*time.Second))
	if _, ok := bank.Evaluate(text, cfg); ok {
		t.Fatalf("messages without attachments are ignored")
	}
}

func TestEmojiSpam(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := only(FeatureEmojiSpam, map[string]float64{ThresholdEmojis: 3})
	if _, ok := bank.Evaluate(message("😀😀😀", at), cfg); ok {
		t.Fatalf("3 emojis should not exceed a threshold of 3")
	}
	if _, ok := bank.Evaluate(message("😀😀 <:pepe:123456789012345678> <a:wave:123456789012345678>", at), cfg); !ok {
		t.Fatalf("custom and unicode emojis should add up")
	}
}

func TestCountEmojisIgnoresTextSymbols(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"step 1 → step 2 → step 3 ← back ↑ ↓ ⌘ ⏎ ™ ↔ ↕ ↖ ↗", 0},
		{"❤ plain heart", 0},
		{"❤️", 1},
		{"😀😀", 2},
		{"➡️ next ⚡ ✅", 3},
		{"😀 <:pepe:123456789012345678>", 2},
	}
	for _, tc := range cases {
		if got := countEmojis(tc.content); got != tc.want {
			t.Fatalf("%q: expected %d emojis, got %d", tc.content, tc.want, got)
		}
	}
}

func TestNewlineSpam(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := only(FeatureNewlineSpam, map[string]float64{ThresholdNewlines: 2})
	if _, ok := bank.Evaluate(message("a\nb\nc", at), cfg); ok {
		t.Fatalf("2 newlines should not fire")
	}
	if _, ok := bank.Evaluate(message(strings.Repeat("a\n", 3), at), cfg); !ok {
		t.Fatalf("3 newlines should fire")
	}
}

func TestScamDetection(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := only(FeatureScamDetection, nil)
	if _, ok := bank.Evaluate(message("FREE Nitro for everyone, click fast", at), cfg); !ok {
		t.Fatalf("expected scam match")
	}
	if _, ok := bank.Evaluate(message("anyone want to play tonight?", at), cfg); ok {
		t.Fatalf("unexpected scam match")
	}
}

func TestIneligibleMessagesSkipped(t *testing.T) {
	bank := newTestBank()
	at := time.Unix(1000, 0)
	cfg := only(FeatureCapsFilter, nil)

	cmd := message("!PING EVERYONE NOW", at)
	if _, ok := bank.Evaluate(cmd, cfg); ok {
		t.Fatalf("bot commands must be skipped")
	}

	bot := message("THIS IS VERY LOUD", at)
	bot.AuthorBot = true
	if _, ok := bank.Evaluate(bot, cfg); ok {
		t.Fatalf("bot authors must be skipped")
	}

	dm := message("THIS IS VERY LOUD", at)
	dm.GuildID = ""
	if _, ok := bank.Evaluate(dm, cfg); ok {
		t.Fatalf("direct messages must be skipped")
	}

	notCmd := message("!UNKNOWN COMMAND HERE", at)
	if _, ok := bank.Evaluate(notCmd, cfg); !ok {
		t.Fatalf("unknown commands are regular messages")
	}
}

func TestDisabledFeatureSkipped(t *testing.T) {
	bank := newTestBank()
	cfg := Resolve(GuildConfig{GuildID: "g1", Features: map[string]bool{FeatureCapsFilter: false}}, NewDefaults(nil, nil))
	if _, ok := bank.Evaluate(message("HELLOWORLDS", time.Unix(1000, 0)), cfg); ok {
		t.Fatalf("disabled caps filter should not fire")
	}
}
