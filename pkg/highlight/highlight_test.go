package highlight

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mudlark/mudlark/pkg/segment"
)

func plain(text string) []segment.Segment {
	return []segment.Segment{{Text: text}}
}

func strptr(s string) *string { return &s }

func mustCompile(t *testing.T, rules []Rule) *Set {
	t.Helper()
	s, errs := Compile(rules)
	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}
	return s
}

func joined(segs []segment.Segment) string {
	return segment.Text(segs)
}

func TestApplyPassThrough(t *testing.T) {
	in := []segment.Segment{
		{Text: "a troll lumbers in", Fg: "250"},
		{Text: ".", Fg: "240"},
	}

	t.Run("empty rule set", func(t *testing.T) {
		s := mustCompile(t, nil)
		out, sounds := s.Apply(in, "main")
		if !reflect.DeepEqual(out, in) {
			t.Errorf("output changed: %+v", out)
		}
		if len(sounds) != 0 {
			t.Errorf("unexpected sounds: %v", sounds)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		s := mustCompile(t, []Rule{{Pattern: "troll", Fast: true, Fg: "196"}})
		out, sounds := s.Apply(nil, "main")
		if out != nil || sounds != nil {
			t.Errorf("expected nil pass-through, got %v, %v", out, sounds)
		}
	})

	t.Run("no match leaves input untouched", func(t *testing.T) {
		s := mustCompile(t, []Rule{{Pattern: "dragon", Fast: true, Fg: "196"}})
		out, _ := s.Apply(in, "main")
		if !reflect.DeepEqual(out, in) {
			t.Errorf("output changed: %+v", out)
		}
	})
}

func TestFastWordBoundary(t *testing.T) {
	s := mustCompile(t, []Rule{{Pattern: "cat", Fast: true, Fg: "226"}})

	tests := []struct {
		name    string
		text    string
		matched bool
	}{
		{"inside larger word", "a category error", false},
		{"whole word", "the cat sat", true},
		{"at start", "cat naps here", true},
		{"at end", "here is a cat", true},
		{"underscore is a word byte", "my_cat_var", false},
		{"punctuation bounds", "a cat, asleep", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := s.Apply(plain(tt.text), "main")
			got := false
			for _, sg := range out {
				if sg.Text == "cat" && sg.Fg == "226" {
					got = true
				}
			}
			if got != tt.matched {
				t.Errorf("match = %v, want %v (segments %+v)", got, tt.matched, out)
			}
			if joined(out) != tt.text {
				t.Errorf("text mangled: %q", joined(out))
			}
		})
	}
}

func TestFastAlternatives(t *testing.T) {
	s := mustCompile(t, []Rule{{Pattern: "orc | troll || ogre", Fast: true, Fg: "196"}})
	out, _ := s.Apply(plain("a troll and an ogre"), "main")
	var hits []string
	for _, sg := range out {
		if sg.Fg == "196" {
			hits = append(hits, sg.Text)
		}
	}
	if !reflect.DeepEqual(hits, []string{"troll", "ogre"}) {
		t.Errorf("hits = %v, want [troll ogre]", hits)
	}
}

func TestStreamFilter(t *testing.T) {
	s := mustCompile(t, []Rule{{Pattern: "hit", Fast: true, Stream: "Combat", Fg: "196"}})

	tests := []struct {
		stream  string
		matched bool
	}{
		{"combat", true},
		{"COMBAT", true},
		{"main", false},
		{"", false},
	}

	for _, tt := range tests {
		out, _ := s.Apply(plain("a solid hit"), tt.stream)
		got := len(out) > 1
		if got != tt.matched {
			t.Errorf("stream %q: match = %v, want %v", tt.stream, got, tt.matched)
		}
	}
}

func TestCaptureExpansion(t *testing.T) {
	s := mustCompile(t, []Rule{{Pattern: `(\d+) gold`, Replace: strptr("$1g"), Fg: "220"}})
	out, _ := s.Apply(plain("You find 42 gold coins"), "main")

	text := joined(out)
	if !strings.Contains(text, "42g coins") {
		t.Errorf("text = %q, want it to contain %q", text, "42g coins")
	}
	var hit bool
	for _, sg := range out {
		if sg.Text == "42g" && sg.Fg == "220" {
			hit = true
		}
	}
	if !hit {
		t.Errorf("replacement not styled: %+v", out)
	}
}

func TestDollarEscape(t *testing.T) {
	s := mustCompile(t, []Rule{{Pattern: `(\d+) silvers`, Replace: strptr("$$$1")}})
	out, _ := s.Apply(plain("paid 10 silvers now"), "main")
	if got := joined(out); got != "paid $10 now" {
		t.Errorf("text = %q, want %q", got, "paid $10 now")
	}
}

func TestReplacementInheritsBaseStyleAndDropsLink(t *testing.T) {
	link := &segment.Link{ID: "421", Noun: "chest"}
	in := []segment.Segment{
		{Text: "a ", Fg: "250"},
		{Text: "battered chest", Fg: "81", Span: segment.SpanLink, Link: link},
	}
	s := mustCompile(t, []Rule{{Pattern: "battered", Replace: strptr("shiny")}})
	out, _ := s.Apply(in, "main")

	if got := joined(out); got != "a shiny chest" {
		t.Fatalf("text = %q, want %q", got, "a shiny chest")
	}
	for _, sg := range out {
		if sg.Text == "shiny" {
			if sg.Fg != "81" {
				t.Errorf("replacement fg = %q, want inherited %q", sg.Fg, "81")
			}
			if sg.Link != nil {
				t.Errorf("replacement kept link payload %+v", sg.Link)
			}
		}
	}
}

func TestOverlapEarliestWins(t *testing.T) {
	// Both rules match "swordfish": [0,5) and [3,9). The later,
	// overlapping span is discarded entirely.
	s := mustCompile(t, []Rule{
		{Pattern: "sword", Fg: "196"},
		{Pattern: "rdfish", Fg: "46"},
	})
	out, _ := s.Apply(plain("swordfish"), "main")

	if got := joined(out); got != "swordfish" {
		t.Fatalf("text = %q", got)
	}
	want := []segment.Segment{
		{Text: "sword", Fg: "196"},
		{Text: "fish"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("segments = %+v, want %+v", out, want)
	}
}

func TestAbuttingSpansBothApply(t *testing.T) {
	s := mustCompile(t, []Rule{
		{Pattern: "sword", Fg: "196"},
		{Pattern: "fish", Fg: "46"},
	})
	out, _ := s.Apply(plain("swordfish"), "main")
	want := []segment.Segment{
		{Text: "sword", Fg: "196"},
		{Text: "fish", Fg: "46"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("segments = %+v, want %+v", out, want)
	}
}

func TestWholeLinePrecedence(t *testing.T) {
	t.Run("first whole-line rule wins", func(t *testing.T) {
		s := mustCompile(t, []Rule{
			{Pattern: "later", Fast: true, WholeLine: true, Bg: "52"},
			{Pattern: "you", Fast: true, WholeLine: true, Bg: "17"},
		})
		// "you" starts earlier, so its payload is first in sorted order.
		out, _ := s.Apply(plain("you notice it later"), "main")
		for _, sg := range out {
			if sg.Bg != "17" {
				t.Errorf("segment %q bg = %q, want %q", sg.Text, sg.Bg, "17")
			}
		}
	})

	t.Run("whole-line supersedes localized styling", func(t *testing.T) {
		s := mustCompile(t, []Rule{
			{Pattern: "stuns", Fast: true, Fg: "226"},
			{Pattern: "troll", Fast: true, WholeLine: true, Fg: "196", Bg: "52"},
		})
		out, _ := s.Apply(plain("the troll stuns you"), "main")
		if len(out) != 1 {
			t.Fatalf("want one uniform segment, got %+v", out)
		}
		if out[0].Fg != "196" || out[0].Bg != "52" {
			t.Errorf("style = fg %q bg %q, want whole-line override", out[0].Fg, out[0].Bg)
		}
	})

	t.Run("links keep foreground under whole-line override", func(t *testing.T) {
		in := []segment.Segment{
			{Text: "the troll drops "},
			{Text: "a ruby", Fg: "81", Span: segment.SpanLink, Link: &segment.Link{ID: "9", Noun: "ruby"}},
		}
		s := mustCompile(t, []Rule{{Pattern: "troll", Fast: true, WholeLine: true, Fg: "196", Bg: "52", Bold: true}})
		out, _ := s.Apply(in, "main")
		for _, sg := range out {
			if sg.Span == segment.SpanLink {
				if sg.Fg != "81" || sg.Bold {
					t.Errorf("link restyled: %+v", sg)
				}
				if sg.Bg != "52" {
					t.Errorf("link bg = %q, want whole-line bg", sg.Bg)
				}
			} else if sg.Fg != "196" {
				t.Errorf("segment %q fg = %q, want %q", sg.Text, sg.Fg, "196")
			}
		}
	})
}

func TestCoalescingMinimality(t *testing.T) {
	long := strings.Repeat("x", 500)
	in := []segment.Segment{
		{Text: long[:100], Fg: "250"},
		{Text: long[100:350], Fg: "250"},
		{Text: long[350:], Fg: "250"},
	}
	// A styleless match forces the line through the rewrite path; the
	// coalescer must still emit a single run.
	s := mustCompile(t, []Rule{{Pattern: "xxx"}})
	out, _ := s.Apply(in, "main")
	if len(out) != 1 {
		t.Fatalf("got %d segments, want 1", len(out))
	}
	if out[0].Text != long || out[0].Fg != "250" {
		t.Errorf("segment = %.20q… fg %q", out[0].Text, out[0].Fg)
	}
}

func TestLinkBoundaryPreserved(t *testing.T) {
	in := []segment.Segment{
		{Text: "key", Fg: "81", Span: segment.SpanLink, Link: &segment.Link{ID: "1", Noun: "key"}},
		{Text: "ring", Fg: "81", Span: segment.SpanLink, Link: &segment.Link{ID: "2", Noun: "ring"}},
	}
	s := mustCompile(t, []Rule{{Pattern: "keyring"}})
	out, _ := s.Apply(in, "main")
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2 (links must not merge): %+v", len(out), out)
	}
	if out[0].Link.ID != "1" || out[1].Link.ID != "2" {
		t.Errorf("link payloads scrambled: %+v", out)
	}
}

func TestSoundTriggers(t *testing.T) {
	t.Run("sound fires despite whole-line overlay", func(t *testing.T) {
		s := mustCompile(t, []Rule{
			{Pattern: "dings", Fast: true, SoundFile: "ding.wav", SoundVolume: 0.5},
			{Pattern: "bell", Fast: true, WholeLine: true, Bg: "17"},
		})
		_, sounds := s.Apply(plain("the bell dings twice"), "main")
		want := []Sound{{File: "ding.wav", Volume: 0.5}}
		if !reflect.DeepEqual(sounds, want) {
			t.Errorf("sounds = %v, want %v", sounds, want)
		}
	})

	t.Run("sound fires even when its span is discarded", func(t *testing.T) {
		s := mustCompile(t, []Rule{
			{Pattern: "sword", Fg: "196"},
			{Pattern: "rdfish", Fg: "46", SoundFile: "splash.wav"},
		})
		_, sounds := s.Apply(plain("swordfish"), "main")
		if len(sounds) != 1 || sounds[0].File != "splash.wav" {
			t.Errorf("sounds = %v", sounds)
		}
	})

	t.Run("one trigger per match", func(t *testing.T) {
		s := mustCompile(t, []Rule{{Pattern: "thud", Fast: true, SoundFile: "thud.wav"}})
		_, sounds := s.Apply(plain("thud thud thud"), "main")
		if len(sounds) != 3 {
			t.Errorf("got %d triggers, want 3", len(sounds))
		}
	})
}

func TestSystemLineExemption(t *testing.T) {
	in := []segment.Segment{
		{Text: "[mudlark: ", Span: segment.SpanSystem},
		{Text: "connection lost]", Span: segment.SpanSystem},
	}
	s := mustCompile(t, []Rule{{Pattern: ".*", WholeLine: true, Bg: "52", SoundFile: "alarm.wav"}})
	out, sounds := s.Apply(in, "main")
	if !reflect.DeepEqual(out, in) {
		t.Errorf("system line restyled: %+v", out)
	}
	if len(sounds) != 0 {
		t.Errorf("system line triggered sounds: %v", sounds)
	}
}

func TestMultibyteOffsets(t *testing.T) {
	// Multibyte runes before the match exercise the byte-to-character
	// translation table.
	s := mustCompile(t, []Rule{{Pattern: "gold", Fast: true, Fg: "220"}})
	in := plain("héðinn’s gold ring")
	out, _ := s.Apply(in, "main")
	if got := joined(out); got != "héðinn’s gold ring" {
		t.Fatalf("text mangled: %q", got)
	}
	var hit bool
	for _, sg := range out {
		if sg.Text == "gold" && sg.Fg == "220" {
			hit = true
		}
	}
	if !hit {
		t.Errorf("match lost after multibyte text: %+v", out)
	}
}
