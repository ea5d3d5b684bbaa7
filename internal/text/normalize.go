// Package text provides the text preparation stages of the synthesis
// pipeline: markup normalization and prosody enhancement.
//
// The synthesis engine consumes plain prose. Markup tokens and decorative
// symbols either get spoken literally or confuse sentence segmentation, so
// they are removed or converted to punctuation before any engine work.
package text

import (
	"regexp"
	"strings"
)

// Regex patterns for markup removal, applied in declaration order. Later
// rules must not re-introduce patterns removed earlier.
const (
	fencedCodeRegexPattern  = "```[\\s\\S]*?```"
	inlineCodeRegexPattern  = "`([^`]+)`"
	boldStarRegexPattern    = `\*\*(.*?)\*\*`
	boldUnderRegexPattern   = `__(.*?)__`
	italicStarRegexPattern  = `\*(.*?)\*`
	italicUnderRegexPattern = `_(.*?)_`
	headerRegexPattern      = `(?m)^#{1,6}\s+`
	linkRegexPattern        = `\[([^\]]+)\]\([^)]+\)`
	bulletRegexPattern      = `(?m)^[*\-]\s+`
)

// Pictographic and emoji codepoint ranges. Each run of these becomes a
// sentence boundary (". ") so decorative symbols read as natural pauses.
const pictographRegexPattern = `[` +
	`\x{1F600}-\x{1F64F}` + // emoticons
	`\x{1F300}-\x{1F5FF}` + // symbols & pictographs
	`\x{1F680}-\x{1F6FF}` + // transport & map symbols
	`\x{1F700}-\x{1F77F}` + // alchemical symbols
	`\x{1F780}-\x{1F7FF}` + // geometric shapes extended
	`\x{1F800}-\x{1F8FF}` + // supplemental arrows-C
	`\x{1F900}-\x{1F9FF}` + // supplemental symbols and pictographs
	`\x{1FA00}-\x{1FA6F}` + // chess symbols
	`\x{1FA70}-\x{1FAFF}` + // symbols and pictographs extended-A
	`\x{2702}-\x{27B0}` +
	`\x{24C2}-\x{1F251}` +
	`]+`

// Cleanup patterns applied after all removals.
const (
	repeatedPeriodRegexPattern = `\.{2,}`
	excessSpaceRegexPattern    = `\s{3,}`
)

const sentenceBoundary = ". "

// Normalizer strips markup and converts decorative symbols to punctuation.
// Normalize is pure and total: the worst case is an empty string, which the
// caller must reject upstream.
type Normalizer struct {
	fencedCodePattern     *regexp.Regexp
	inlineCodePattern     *regexp.Regexp
	boldStarPattern       *regexp.Regexp
	boldUnderPattern      *regexp.Regexp
	italicStarPattern     *regexp.Regexp
	italicUnderPattern    *regexp.Regexp
	headerPattern         *regexp.Regexp
	linkPattern           *regexp.Regexp
	bulletPattern         *regexp.Regexp
	pictographPattern     *regexp.Regexp
	repeatedPeriodPattern *regexp.Regexp
	excessSpacePattern    *regexp.Regexp
}

// NewNormalizer compiles the normalization patterns once, up front.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		fencedCodePattern:     regexp.MustCompile(fencedCodeRegexPattern),
		inlineCodePattern:     regexp.MustCompile(inlineCodeRegexPattern),
		boldStarPattern:       regexp.MustCompile(boldStarRegexPattern),
		boldUnderPattern:      regexp.MustCompile(boldUnderRegexPattern),
		italicStarPattern:     regexp.MustCompile(italicStarRegexPattern),
		italicUnderPattern:    regexp.MustCompile(italicUnderRegexPattern),
		headerPattern:         regexp.MustCompile(headerRegexPattern),
		linkPattern:           regexp.MustCompile(linkRegexPattern),
		bulletPattern:         regexp.MustCompile(bulletRegexPattern),
		pictographPattern:     regexp.MustCompile(pictographRegexPattern),
		repeatedPeriodPattern: regexp.MustCompile(repeatedPeriodRegexPattern),
		excessSpacePattern:    regexp.MustCompile(excessSpaceRegexPattern),
	}
}

// Normalize applies markup removal and symbol conversion in a fixed order.
// The output contains no markup tokens and no pictographic symbols, and is
// stable under a second pass.
func (n *Normalizer) Normalize(raw string) string {
	cleaned := n.stripMarkup(raw)

	cleaned = n.convertPictographs(cleaned)

	return n.finalCleanup(cleaned)
}

// stripMarkup removes markdown formatting while keeping the text it wraps.
func (n *Normalizer) stripMarkup(text string) string {
	// Fenced blocks go first: their content is code, not prose.
	text = n.fencedCodePattern.ReplaceAllString(text, "")
	text = n.inlineCodePattern.ReplaceAllString(text, "$1")

	// Bold before italic, so "**x**" does not leave stray single stars.
	text = n.boldStarPattern.ReplaceAllString(text, "$1")
	text = n.boldUnderPattern.ReplaceAllString(text, "$1")
	text = n.italicStarPattern.ReplaceAllString(text, "$1")
	text = n.italicUnderPattern.ReplaceAllString(text, "$1")

	text = n.headerPattern.ReplaceAllString(text, "")
	text = n.linkPattern.ReplaceAllString(text, "$1")
	text = n.bulletPattern.ReplaceAllString(text, "")

	return text
}

// convertPictographs replaces each run of emoji codepoints with a sentence
// boundary. A question-mark ornament therefore becomes a period, never a
// question mark.
func (n *Normalizer) convertPictographs(text string) string {
	return n.pictographPattern.ReplaceAllString(text, sentenceBoundary)
}

// finalCleanup collapses the punctuation and whitespace runs left behind by
// the removals above.
func (n *Normalizer) finalCleanup(text string) string {
	text = n.repeatedPeriodPattern.ReplaceAllString(text, ".")
	text = n.excessSpacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
