package spanindex_test

import (
	"strings"
	"testing"

	"github.com/gavelhq/gavel/pkg/spanindex"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single line",
			text: "hello world",
			want: "<span0>hello world</span0>",
		},
		{
			name: "multiple lines",
			text: "first\nsecond\nthird",
			want: "<span0>first</span0>\n<span1>second</span1>\n<span2>third</span2>",
		},
		{
			name: "empty line preserved",
			text: "a\n\nb",
			want: "<span0>a</span0>\n<span1></span1>\n<span2>b</span2>",
		},
		{
			name: "html escaped",
			text: "a < b & c",
			want: "<span0>a &lt; b &amp; c</span0>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spanindex.Encode(tt.text); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInner(t *testing.T) {
	encoded := spanindex.Encode("alpha\nbeta\ngamma")

	inner := spanindex.Inner(encoded)
	if len(inner) != 3 {
		t.Fatalf("got %d units, want 3", len(inner))
	}
	if inner[0] != "alpha" || inner[1] != "beta" || inner[2] != "gamma" {
		t.Errorf("unexpected mapping: %v", inner)
	}
}

func TestInnerUnescapes(t *testing.T) {
	encoded := spanindex.Encode("x < y")

	inner := spanindex.Inner(encoded)
	if inner[0] != "x < y" {
		t.Errorf("got %q, want original text back", inner[0])
	}
}

func TestInnerSkipsMismatchedClose(t *testing.T) {
	inner := spanindex.Inner("<span0>ok</span0><span1>broken</span2>")

	if len(inner) != 1 {
		t.Fatalf("got %d units, want 1", len(inner))
	}
	if inner[0] != "ok" {
		t.Errorf("got %q, want ok", inner[0])
	}
}

func TestInnerEmpty(t *testing.T) {
	inner := spanindex.Inner("")
	if len(inner) != 0 {
		t.Errorf("got %d units, want 0", len(inner))
	}
}

func TestResolve(t *testing.T) {
	content := "alpha\nbeta\ngamma"
	encoded := spanindex.Encode(content)

	ranges := spanindex.Resolve(content, encoded, []int{0, 2})
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2", len(ranges))
	}

	if got := content[ranges[0].Start:ranges[0].End]; got != "alpha" {
		t.Errorf("range 0: got %q, want alpha", got)
	}
	if got := content[ranges[1].Start:ranges[1].End]; got != "gamma" {
		t.Errorf("range 1: got %q, want gamma", got)
	}
}

func TestResolveDropsUnknownIDs(t *testing.T) {
	content := "alpha\nbeta"
	encoded := spanindex.Encode(content)

	ranges := spanindex.Resolve(content, encoded, []int{0, 7, 1})
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, want 2 (unknown id dropped)", len(ranges))
	}
}

func TestResolveDropsAlteredText(t *testing.T) {
	encoded := spanindex.Encode("original line")

	ranges := spanindex.Resolve("content rewritten entirely", encoded, []int{0})
	if len(ranges) != 0 {
		t.Errorf("got %d ranges, want 0 for unfindable text", len(ranges))
	}
}

func TestResolveFirstOccurrence(t *testing.T) {
	content := "repeat\nrepeat"
	encoded := spanindex.Encode(content)

	ranges := spanindex.Resolve(content, encoded, []int{1})
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1", len(ranges))
	}
	if ranges[0].Start != 0 {
		t.Errorf("start: got %d, want 0 (first occurrence)", ranges[0].Start)
	}
}

func TestEncodeResolveRoundTrip(t *testing.T) {
	content := strings.Join([]string{
		"Article 5 requires consent for processing.",
		"Controllers must document the lawful basis.",
		"Retention periods are bounded by purpose.",
	}, "\n")
	encoded := spanindex.Encode(content)

	for id := range 3 {
		ranges := spanindex.Resolve(content, encoded, []int{id})
		if len(ranges) != 1 {
			t.Fatalf("id %d: got %d ranges, want 1", id, len(ranges))
		}
		got := content[ranges[0].Start:ranges[0].End]
		want := strings.Split(content, "\n")[id]
		if got != want {
			t.Errorf("id %d: got %q, want %q", id, got, want)
		}
	}
}
