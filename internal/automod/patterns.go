package automod

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var inviteRegex = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:discord\.(?:gg|io|me|li)|discord(?:app)?\.com/invite|dsc\.gg|invite\.gg)/[a-z0-9\-]+`)

var inviteHosts = map[string]struct{}{
	"discord.gg": {},
	"discord.io": {},
	"discord.me": {},
	"discord.li": {},
	"dsc.gg":     {},
	"invite.gg":  {},
}

var scamPatterns = []string{
	`free\s+(?:discord\s+)?nitro`,
	`nitro\s+(?:for\s+)?free`,
	`discord\s+nitro\s+(?:gift|giveaway|airdrop)`,
	`steam\s*(?:community)?\s*gift`,
	`(?:claim|get)\s+your\s+(?:free\s+)?(?:nitro|gift|reward|prize)`,
	`@everyone.{0,80}https?://`,
	`(?:crypto|nft|airdrop)\s+(?:giveaway|claim|drop)`,
	`(?:double|2x)\s+your\s+(?:btc|eth|crypto|money)`,
	`i(?:'| a)?m\s+leaving\s+(?:cs:?go|cs2|steam).{0,40}(?:skins|inventory)`,
	`dis(?:c|k)or(?:d|b)-?(?:nitro|gift)s?\.`,
	`s(?:t|l)ea(?:m|n)c(?:o|0)m{1,2}unit(?:y|i)\.`,
}

var scamRegex = regexp.MustCompile(`(?i)(?:` + strings.Join(scamPatterns, `|`) + `)`)

var customEmojiRegex = regexp.MustCompile(`<a?:[A-Za-z0-9_~]{2,32}:\d{15,21}>`)

// foldText lowercases and strips combining marks so that "Crétin" and
// "cretin" compare equal.
func foldText(input string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, strings.ToLower(input))
	if err != nil {
		return strings.ToLower(input)
	}
	return folded
}

// containsWord reports a whole-word match of word inside text. Both must
// already be folded.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)
		if isBoundary(text, start, true) && isBoundary(text, end, false) {
			return true
		}
		offset = start + 1
		if offset >= len(text) {
			return false
		}
	}
}

func isBoundary(text string, pos int, before bool) bool {
	var r rune
	if before {
		if pos == 0 {
			return true
		}
		r = lastRune(text[:pos])
	} else {
		if pos >= len(text) {
			return true
		}
		r = []rune(text[pos:])[0]
	}
	return !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_')
}

func lastRune(s string) rune {
	runes := []rune(s)
	return runes[len(runes)-1]
}

// countEmojis counts custom emoji tokens plus Unicode emoji grapheme clusters.
// Symbols that render as text by default, such as arrows or the trademark
// sign, only count when followed by the emoji variation selector.
func countEmojis(content string) int {
	count := len(customEmojiRegex.FindAllStringIndex(content, -1))
	rest := customEmojiRegex.ReplaceAllString(content, " ")

	graphemes := uniseg.NewGraphemes(rest)
	for graphemes.Next() {
		if isEmojiCluster(graphemes.Runes()) {
			count++
		}
	}
	return count
}

const variationSelector16 = 0xFE0F

// emojiPresentation lists the BMP code points that render as emoji without a
// variation selector.
var emojiPresentation = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x231A, Hi: 0x231B, Stride: 1},
		{Lo: 0x23E9, Hi: 0x23EC, Stride: 1},
		{Lo: 0x23F0, Hi: 0x23F3, Stride: 3},
		{Lo: 0x25FD, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2614, Hi: 0x2615, Stride: 1},
		{Lo: 0x2648, Hi: 0x2653, Stride: 1},
		{Lo: 0x267F, Hi: 0x267F, Stride: 1},
		{Lo: 0x2693, Hi: 0x2693, Stride: 1},
		{Lo: 0x26A1, Hi: 0x26A1, Stride: 1},
		{Lo: 0x26AA, Hi: 0x26AB, Stride: 1},
		{Lo: 0x26BD, Hi: 0x26BE, Stride: 1},
		{Lo: 0x26C4, Hi: 0x26C5, Stride: 1},
		{Lo: 0x26CE, Hi: 0x26CE, Stride: 1},
		{Lo: 0x26D4, Hi: 0x26D4, Stride: 1},
		{Lo: 0x26EA, Hi: 0x26EA, Stride: 1},
		{Lo: 0x26F2, Hi: 0x26F3, Stride: 1},
		{Lo: 0x26F5, Hi: 0x26F5, Stride: 1},
		{Lo: 0x26FA, Hi: 0x26FA, Stride: 1},
		{Lo: 0x26FD, Hi: 0x26FD, Stride: 1},
		{Lo: 0x2705, Hi: 0x2705, Stride: 1},
		{Lo: 0x270A, Hi: 0x270B, Stride: 1},
		{Lo: 0x2728, Hi: 0x2728, Stride: 1},
		{Lo: 0x274C, Hi: 0x274E, Stride: 2},
		{Lo: 0x2753, Hi: 0x2755, Stride: 1},
		{Lo: 0x2757, Hi: 0x2757, Stride: 1},
		{Lo: 0x2795, Hi: 0x2797, Stride: 1},
		{Lo: 0x27B0, Hi: 0x27BF, Stride: 15},
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B55, Stride: 5},
	},
}

func isEmojiCluster(runes []rune) bool {
	first := runes[0]
	if first >= 0x1F000 && first <= 0x1FAFF {
		return true
	}
	if unicode.Is(emojiPresentation, first) {
		return true
	}
	if !isTextSymbol(first) {
		return false
	}
	for _, r := range runes[1:] {
		if r == variationSelector16 {
			return true
		}
	}
	return false
}

func isTextSymbol(r rune) bool {
	switch {
	case r == 0x00A9 || r == 0x00AE:
		return true
	case r == 0x203C || r == 0x2049 || r == 0x2122 || r == 0x2139:
		return true
	case r >= 0x2190 && r <= 0x21FF:
		return true
	case r >= 0x2300 && r <= 0x23FF:
		return true
	case r >= 0x25A0 && r <= 0x27BF:
		return true
	case r >= 0x2900 && r <= 0x297F:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r == 0x3030 || r == 0x303D || r == 0x3297 || r == 0x3299:
		return true
	}
	return false
}
