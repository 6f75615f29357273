package automod

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"luna-guard/internal/utils"
)

// Verdict is what a detector reports when it fires. Type is the feature key.
type Verdict struct {
	Type        string
	Description string
}

type evaluation struct {
	msg     Message
	cfg     Resolved
	tracker *Tracker
}

type detector struct {
	feature string
	check   func(e *evaluation) (string, bool)
}

// detectors is the normative evaluation order. The first match wins.
var detectors = []detector{
	{FeatureMentionSpam, checkMentions},
	{FeatureWordFilter, checkWords},
	{FeatureSpamDetection, checkMessageRate},
	{FeatureCapsFilter, checkCaps},
	{FeatureInviteFilter, checkInvites},
	{FeatureImageSpam, checkImageRate},
	{FeatureEmojiSpam, checkEmojis},
	{FeatureNewlineSpam, checkNewlines},
	{FeatureCharSpam, checkCharRepeat},
	{FeatureRepeatedText, checkRepeatedText},
	{FeatureScamDetection, checkScam},
}

func checkMentions(e *evaluation) (string, bool) {
	limit := e.cfg.Int(ThresholdMentions)
	count := len(e.msg.Mentions) + len(e.msg.RoleMentions)
	if count <= limit {
		return "", false
	}
	return fmt.Sprintf("mentioned %d users or roles (limit %d)", count, limit), true
}

func checkWords(e *evaluation) (string, bool) {
	words := e.cfg.Words()
	if len(words) == 0 || e.msg.Content == "" {
		return "", false
	}
	if word, ok := MatchBannedWord(e.msg.Content, words); ok {
		return fmt.Sprintf("used a filtered word (%s)", censor(word)), true
	}
	return "", false
}

func checkMessageRate(e *evaluation) (string, bool) {
	limit := e.cfg.Int(ThresholdSpam)
	interval := seconds(e.cfg.Threshold(ThresholdSpamWindow))
	key := windowKey(e.msg.GuildID, e.msg.AuthorID, windowMessages)
	count := e.tracker.Record(key, interval, e.msg.Timestamp)
	if count <= limit {
		return "", false
	}
	// one burst, one violation
	e.tracker.Reset(key)
	return fmt.Sprintf("sent %d messages in %s (limit %d)", count, interval, limit), true
}

func checkCaps(e *evaluation) (string, bool) {
	percent, length := CapsPercentage(e.msg.Content)
	if length <= 10 {
		return "", false
	}
	limit := e.cfg.Threshold(ThresholdCaps)
	if percent <= limit {
		return "", false
	}
	return fmt.Sprintf("message is %.0f%% uppercase (limit %.0f%%)", percent, limit), true
}

func checkInvites(e *evaluation) (string, bool) {
	if link, ok := FindInvite(e.msg.Content); ok {
		return "posted a server invite (" + link + ")", true
	}
	return "", false
}

func checkImageRate(e *evaluation) (string, bool) {
	if e.msg.Attachments < 1 {
		return "", false
	}
	limit := e.cfg.Int(ThresholdImages)
	interval := seconds(e.cfg.Threshold(ThresholdImageWindow))
	key := windowKey(e.msg.GuildID, e.msg.AuthorID, windowImages)
	count := 0
	for i := 0; i < e.msg.Attachments; i++ {
		count = e.tracker.Record(key, interval, e.msg.Timestamp)
	}
	if count <= limit {
		return "", false
	}
	e.tracker.Reset(key)
	return fmt.Sprintf("posted %d attachments in %s (limit %d)", count, interval, limit), true
}

func checkEmojis(e *evaluation) (string, bool) {
	limit := e.cfg.Int(ThresholdEmojis)
	count := countEmojis(e.msg.Content)
	if count <= limit {
		return "", false
	}
	return fmt.Sprintf("used %d emojis (limit %d)", count, limit), true
}

func checkNewlines(e *evaluation) (string, bool) {
	limit := e.cfg.Int(ThresholdNewlines)
	count := strings.Count(e.msg.Content, "\n")
	if count <= limit {
		return "", false
	}
	return fmt.Sprintf("used %d line breaks (limit %d)", count, limit), true
}

func checkCharRepeat(e *evaluation) (string, bool) {
	limit := e.cfg.Int(ThresholdCharRepeat)
	char, run := LongestRun(e.msg.Content)
	if run < limit {
		return "", false
	}
	return fmt.Sprintf("repeated %q %d times in a row (limit %d)", char, run, limit), true
}

func checkRepeatedText(e *evaluation) (string, bool) {
	limit := e.cfg.Int(ThresholdWordRepeat)
	word, freq, total := MostFrequentWord(e.msg.Content)
	if total <= 5 {
		return "", false
	}
	if freq <= limit || float64(freq)/float64(total) <= 0.5 {
		return "", false
	}
	return fmt.Sprintf("repeated %q %d times out of %d words", word, freq, total), true
}

func checkScam(e *evaluation) (string, bool) {
	if match := scamRegex.FindString(e.msg.Content); match != "" {
		return "message matches a known scam pattern", true
	}
	return "", false
}

// MatchBannedWord returns the first banned word found as a whole word in content.
func MatchBannedWord(content string, words []string) (string, bool) {
	folded := foldText(content)
	for _, word := range words {
		if containsWord(folded, foldText(strings.TrimSpace(word))) {
			return word, true
		}
	}
	return "", false
}

// CapsPercentage returns the share of uppercase runes and the rune length.
func CapsPercentage(content string) (float64, int) {
	length := 0
	upper := 0
	for _, r := range content {
		length++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if length == 0 {
		return 0, 0
	}
	return float64(upper) / float64(length) * 100, length
}

// FindInvite returns the first invite link in content.
func FindInvite(content string) (string, bool) {
	if match := inviteRegex.FindString(content); match != "" {
		return match, true
	}
	for _, raw := range utils.ExtractURLs(content) {
		normalized, host, err := utils.NormalizeURL(raw)
		if err != nil {
			continue
		}
		if !utils.HostMatch(host, inviteHosts) {
			continue
		}
		rest := strings.TrimPrefix(normalized, "https://"+host)
		rest = strings.TrimPrefix(rest, "http://"+host)
		if strings.Trim(rest, "/") != "" {
			return normalized, true
		}
	}
	return "", false
}

// LongestRun scans content once and returns the character with the longest
// consecutive run.
func LongestRun(content string) (rune, int) {
	var best, current rune
	bestRun, run := 0, 0
	for i, r := range content {
		if i > 0 && r == current {
			run++
		} else {
			current = r
			run = 1
		}
		if run > bestRun {
			best = current
			bestRun = run
		}
	}
	return best, bestRun
}

// MostFrequentWord splits content on whitespace and returns the most common
// word (case-insensitive), its frequency and the total word count. Ties go to
// the word seen first.
func MostFrequentWord(content string) (string, int, int) {
	words := strings.Fields(content)
	counts := make(map[string]int, len(words))
	best, bestCount := "", 0
	for _, word := range words {
		key := strings.ToLower(word)
		counts[key]++
		if counts[key] > bestCount {
			best = key
			bestCount = counts[key]
		}
	}
	return best, bestCount, len(words)
}

func censor(word string) string {
	runes := []rune(word)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}
