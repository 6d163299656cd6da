package highlight

import (
	"regexp"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
)

// compiledRule pairs a rule with its compiled form. Fast rules live in
// the set's shared literal automaton; regex rules carry their own
// compiled expression. A nil re on a non-fast rule marks a pattern
// that failed to compile and is permanently inert.
type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Set is an immutable compiled rule set. Build one with Compile and
// share it freely: a Set is never mutated after construction, so any
// number of goroutines may call its methods concurrently.
type Set struct {
	rules []compiledRule

	// trie matches every distinct literal fragment of every fast rule
	// in one pass. fragRules maps the trie's pattern index back to all
	// rules that own that fragment; two rules may watch the same word
	// with different streams or payloads. nil trie means no fast rules.
	trie      *ahocorasick.Trie
	fragRules [][]int

	regexCount int
}

// Compile builds a Set from an ordered rule list. A malformed regex
// disables only its own rule; the returned RuleErrors describe every
// disabled rule so the caller can warn the user. Compiling an empty
// or nil list yields a valid set that never matches.
func Compile(rules []Rule) (*Set, []RuleError) {
	s := &Set{rules: make([]compiledRule, 0, len(rules))}
	var errs []RuleError
	var fragments []string
	fragIndex := make(map[string]int)

	for i, r := range rules {
		cr := compiledRule{rule: r}
		if r.Fast {
			for _, frag := range strings.Split(r.Pattern, "|") {
				frag = strings.TrimSpace(frag)
				if frag == "" {
					continue
				}
				fi, ok := fragIndex[frag]
				if !ok {
					fi = len(fragments)
					fragIndex[frag] = fi
					fragments = append(fragments, frag)
					s.fragRules = append(s.fragRules, nil)
				}
				if owners := s.fragRules[fi]; len(owners) > 0 && owners[len(owners)-1] == i {
					continue // fragment repeated within one pattern
				}
				s.fragRules[fi] = append(s.fragRules[fi], i)
			}
		} else {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				errs = append(errs, RuleError{Index: i, Rule: r, Err: err})
			} else {
				cr.re = re
				s.regexCount++
			}
		}
		s.rules = append(s.rules, cr)
	}

	if len(fragments) > 0 {
		s.trie = ahocorasick.NewTrieBuilder().AddStrings(fragments).Build()
	}

	return s, errs
}

// Empty reports whether the set can never match anything.
func (s *Set) Empty() bool {
	return s == nil || (s.trie == nil && s.regexCount == 0)
}

// streamApplies checks a rule's stream filter against the line's
// stream identifier, case-insensitively. An empty filter matches all.
func streamApplies(rule Rule, stream string) bool {
	return rule.Stream == "" || strings.EqualFold(rule.Stream, stream)
}
