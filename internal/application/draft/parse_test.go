package draft_test

import (
	"strings"
	"testing"

	"email-draft-ai-api/internal/application/draft"
	"email-draft-ai-api/internal/domain/entity"
)

func TestParseDrafts(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     entity.DraftSet
		strategy draft.Strategy
	}{
		{
			name:     "three markers",
			raw:      "VERSION 1:\nHi Ann,\nFirst.\n\nVERSION 2:\nHello Ann,\nSecond.\n\nVERSION 3:\nDear Ann,\nThird.",
			want:     entity.DraftSet{"Hi Ann,\nFirst.", "Hello Ann,\nSecond.", "Dear Ann,\nThird."},
			strategy: draft.StrategyMarkers,
		},
		{
			name:     "case insensitive and tight spacing",
			raw:      "version1: one version 2 : two Version3:three",
			want:     entity.DraftSet{"one", "two", "three"},
			strategy: draft.StrategyMarkers,
		},
		{
			name:     "unicode spaces inside markers",
			raw:      "VERSION\u00a01: a VERSION\u20032\u00a0: b VERSION 3\u202f: c",
			want:     entity.DraftSet{"a", "b", "c"},
			strategy: draft.StrategyMarkers,
		},
		{
			name:     "more than three keeps first three",
			raw:      "VERSION 1: a\nVERSION 2: b\nVERSION 3: c\nVERSION 4: d\nVERSION 5: e",
			want:     entity.DraftSet{"a", "b", "c"},
			strategy: draft.StrategyTruncated,
		},
		{
			name:     "single marker repeated",
			raw:      "VERSION 1:\nOnly one draft.",
			want:     entity.DraftSet{"Only one draft.", "Only one draft.", "Only one draft."},
			strategy: draft.StrategyPadded,
		},
		{
			name:     "two markers pads with last",
			raw:      "VERSION 1: first\nVERSION 2: second",
			want:     entity.DraftSet{"first", "second", "second"},
			strategy: draft.StrategyPadded,
		},
		{
			name:     "empty fragments are discarded",
			raw:      "VERSION 1:\n\nVERSION 2:   \nVERSION 3: real",
			want:     entity.DraftSet{"real", "real", "real"},
			strategy: draft.StrategyPadded,
		},
		{
			name:     "preamble counts as a fragment",
			raw:      "Here you go:\nVERSION 1: a\nVERSION 2: b",
			want:     entity.DraftSet{"Here you go:", "a", "b"},
			strategy: draft.StrategyMarkers,
		},
		{
			name:     "markers only yields empty drafts",
			raw:      "VERSION 1: VERSION 2:",
			want:     entity.DraftSet{"", "", ""},
			strategy: draft.StrategyPadded,
		},
		{
			name:     "no markers splits on blank lines",
			raw:      "Email A\n\n\nEmail B\n\n\nEmail C\n\n\nEmail D",
			want:     entity.DraftSet{"Email A", "Email B", "Email C"},
			strategy: draft.StrategyBlankSplit,
		},
		{
			name:     "no markers and too few segments repeats reply",
			raw:      "  Dear team,\n\nPlease see below.\n\n\nThanks  ",
			want:     entity.DraftSet{"Dear team,\n\nPlease see below.\n\n\nThanks", "Dear team,\n\nPlease see below.\n\n\nThanks", "Dear team,\n\nPlease see below.\n\n\nThanks"},
			strategy: draft.StrategyWholeReply,
		},
		{
			name:     "empty reply",
			raw:      "",
			want:     entity.DraftSet{"", "", ""},
			strategy: draft.StrategyWholeReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := draft.ParseDraftsDetailed(tt.raw)
			if res.Drafts != tt.want {
				t.Errorf("drafts:\n got %q\nwant %q", res.Drafts, tt.want)
			}
			if res.Strategy != tt.strategy {
				t.Errorf("strategy: got %s, want %s", res.Strategy, tt.strategy)
			}
			if got := draft.ParseDrafts(tt.raw); got != res.Drafts {
				t.Errorf("ParseDrafts disagrees with ParseDraftsDetailed: %q vs %q", got, res.Drafts)
			}
		})
	}
}

func TestParseDrafts_NeverContainsMarkers(t *testing.T) {
	inputs := []string{
		"VERSION 1: a VERSION 2: b VERSION 3: c",
		"x\n\n\nVERSION9 leftover\n\n\nz",
		strings.Repeat("VERSION 7: text ", 10),
	}
	for _, raw := range inputs {
		for i, d := range draft.ParseDrafts(raw) {
			if len(draft.FindMarkers(d)) != 0 {
				t.Errorf("draft %d of %q still contains a marker: %q", i, raw, d)
			}
		}
	}
}

func TestFindMarkers(t *testing.T) {
	raw := "intro VERSION 1: a version 12 : b"
	markers := draft.FindMarkers(raw)
	if len(markers) != 2 {
		t.Fatalf("markers: got %d, want 2", len(markers))
	}
	if markers[0].Number != 1 || markers[1].Number != 12 {
		t.Errorf("numbers: got %d and %d, want 1 and 12", markers[0].Number, markers[1].Number)
	}
	if got := raw[markers[0].Start:markers[0].End]; got != "VERSION 1:" {
		t.Errorf("first marker text: got %q", got)
	}
	if got := raw[markers[1].Start:markers[1].End]; got != "version 12 :" {
		t.Errorf("second marker text: got %q", got)
	}

	if got := draft.FindMarkers("VERSION: missing number"); got != nil {
		t.Errorf("expected no markers, got %v", got)
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      entity.DraftSet
		strategy  draft.Strategy
	}{
		{"none", nil, entity.DraftSet{"", "", ""}, draft.StrategyPadded},
		{"one", []string{"a"}, entity.DraftSet{"a", "a", "a"}, draft.StrategyPadded},
		{"two", []string{"a", "b"}, entity.DraftSet{"a", "b", "b"}, draft.StrategyPadded},
		{"three", []string{"a", "b", "c"}, entity.DraftSet{"a", "b", "c"}, draft.StrategyMarkers},
		{"four", []string{"a", "b", "c", "d"}, entity.DraftSet{"a", "b", "c"}, draft.StrategyTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy := draft.Reconcile(tt.fragments)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if strategy != tt.strategy {
				t.Errorf("strategy: got %s, want %s", strategy, tt.strategy)
			}
		})
	}
}

func TestStripMarkers(t *testing.T) {
	got := draft.StripMarkers("  Hello VERSION 2: world  ")
	if got != "Hello  world" {
		t.Errorf("got %q, want %q", got, "Hello  world")
	}
}
