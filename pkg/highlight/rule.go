// Package highlight matches user-configured pattern rules against
// styled game text and produces restyled, optionally rewritten,
// segment lists plus sound triggers.
//
// Rules are compiled once into an immutable Set; every incoming line
// is then run through the Set's fast literal automaton and regex list,
// overlaps are resolved, replacements expanded, and the per-character
// result coalesced back into minimal segment runs.
package highlight

import "github.com/mudlark/mudlark/pkg/segment"

// Rule describes one user-configured highlight. Rules are supplied
// wholesale on every configuration change and are immutable once
// handed to Compile.
type Rule struct {
	// Pattern is a regular expression, or, when Fast is set, a
	// |-delimited list of literal alternatives.
	Pattern string

	// Fast selects literal multi-pattern matching over regex
	// compilation. Fast rules only fire on whole-word occurrences.
	Fast bool

	// Stream restricts the rule to lines from one stream
	// (case-insensitive). Empty means any stream.
	Stream string

	Fg   segment.Color
	Bg   segment.Color
	Bold bool

	// WholeLine restyles the entire containing line on a match
	// instead of just the matched text. The first whole-line match
	// on a line wins.
	WholeLine bool

	// Replace is a substitution template for regex rules. $1, $2, …
	// reference capture groups; $$ is a literal dollar sign. nil
	// means no rewriting. Ignored for fast rules.
	Replace *string

	// SoundFile, if non-empty, names an audio cue to trigger on every
	// match. The engine only collects triggers; playback is the
	// caller's concern.
	SoundFile string

	// SoundVolume scales the cue; 0 means the player's default.
	SoundVolume float64
}

// Sound is one triggered audio cue. Triggers accumulate per line,
// independent of whether the matched text was ultimately rewritten or
// restyled.
type Sound struct {
	File   string
	Volume float64
}

// RuleError reports a rule that could not be compiled. The rule is
// left inert (it never matches); the rest of the set is unaffected.
// Callers should log these as warnings, not fail the load.
type RuleError struct {
	Index int
	Rule  Rule
	Err   error
}

func (e RuleError) Error() string {
	return "highlight: rule " + e.Rule.Pattern + ": " + e.Err.Error()
}

func (e RuleError) Unwrap() error { return e.Err }
