package text

import (
	"regexp"
	"strings"
)

// The engine renders pause length proportional to whitespace run length and
// treats an ellipsis as a held pause. Prosody is therefore authored purely by
// text mutation, never by engine parameters.
const (
	sentencePause = "   " // three spaces: a full breath after . ! ?
	clausePause   = "  "  // two spaces: a shorter breath after , ;
)

// Placeholder protecting a literal ellipsis from being treated as three
// independent sentence terminators during pause insertion.
const ellipsisPlaceholder = "___ELLIPSIS___"

// Pause insertion and question enhancement patterns.
const (
	sentencePunctRegexPattern = `([.!?])\s*`
	clausePunctRegexPattern   = `([,;])\s*`
	excessPauseRegexPattern   = ` {5,}`
	bareQuestionRegexPattern  = `([^.!?])\?`
)

// Question marks in either directional form mark a text interrogative.
const questionMarks = "?¿"

// Enhanced is normalized text with inserted pause and intonation cues, plus
// the derived interrogative flag that selects the engine's question preset.
type Enhanced struct {
	Text          string
	Interrogative bool
}

// Enhancer inserts timing and intonation cues into normalized text.
type Enhancer struct {
	sentencePunctPattern *regexp.Regexp
	clausePunctPattern   *regexp.Regexp
	excessPausePattern   *regexp.Regexp
	bareQuestionPattern  *regexp.Regexp
}

// NewEnhancer compiles the prosody patterns once, up front.
func NewEnhancer() *Enhancer {
	return &Enhancer{
		sentencePunctPattern: regexp.MustCompile(sentencePunctRegexPattern),
		clausePunctPattern:   regexp.MustCompile(clausePunctRegexPattern),
		excessPausePattern:   regexp.MustCompile(excessPauseRegexPattern),
		bareQuestionPattern:  regexp.MustCompile(bareQuestionRegexPattern),
	}
}

// Enhance detects interrogative content and inserts pause runs after
// punctuation. Interrogative text additionally gets a held pause before each
// question mark, producing a rise into the question's intonation.
func (e *Enhancer) Enhance(normalized string) Enhanced {
	interrogative := strings.ContainsAny(normalized, questionMarks)

	enhanced := e.insertPauses(normalized)
	if interrogative {
		enhanced = e.enhanceQuestions(enhanced)
	}

	return Enhanced{
		Text:          enhanced,
		Interrogative: interrogative,
	}
}

// insertPauses normalizes the spacing after sentence and clause punctuation
// to fixed-length pause runs.
func (e *Enhancer) insertPauses(text string) string {
	// A literal ellipsis is one held pause, not three sentence endings.
	text = strings.ReplaceAll(text, "...", ellipsisPlaceholder)

	text = e.sentencePunctPattern.ReplaceAllString(text, "$1"+sentencePause)
	text = e.clausePunctPattern.ReplaceAllString(text, "$1"+clausePause)
	text = e.excessPausePattern.ReplaceAllString(text, sentencePause)

	return strings.ReplaceAll(text, ellipsisPlaceholder, "...")
}

// enhanceQuestions inserts an ellipsis directly before every question mark
// that does not already follow sentence punctuation, so the engine holds a
// beat before the rising intonation.
func (e *Enhancer) enhanceQuestions(text string) string {
	return e.bareQuestionPattern.ReplaceAllString(text, "$1...?")
}
