package retrieval_test

import (
	"testing"

	"github.com/gavelhq/gavel/pkg/retrieval"
)

func keys(list []retrieval.Candidate) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Key
	}
	return out
}

func TestFuseRRFAgreementWins(t *testing.T) {
	lists := [][]retrieval.Candidate{
		{{Key: "A"}, {Key: "B"}, {Key: "C"}},
		{{Key: "B"}, {Key: "A"}, {Key: "C"}},
	}

	fused := retrieval.FuseRRF(lists, 60, 0)
	if len(fused) != 3 {
		t.Fatalf("got %d candidates, want 3", len(fused))
	}

	// A and B each appear at ranks 1 and 2 across the lists; C sits at
	// rank 3 in both and must come last.
	if fused[2].Key != "C" {
		t.Errorf("last: got %s, want C", fused[2].Key)
	}
	if fused[0].Score != fused[1].Score {
		t.Errorf("A and B should tie: %f vs %f", fused[0].Score, fused[1].Score)
	}
	// Equal scores break by key ascending.
	if fused[0].Key != "A" || fused[1].Key != "B" {
		t.Errorf("tie-break order: got %v, want [A B C]", keys(fused))
	}
}

func TestFuseRRFDeterministic(t *testing.T) {
	lists := [][]retrieval.Candidate{
		{{Key: "x"}, {Key: "y"}, {Key: "z"}},
		{{Key: "z"}, {Key: "x"}},
	}

	first := keys(retrieval.FuseRRF(lists, 60, 0))
	for range 10 {
		if got := keys(retrieval.FuseRRF(lists, 60, 0)); len(got) != len(first) {
			t.Fatal("result length changed between runs")
		} else {
			for i := range got {
				if got[i] != first[i] {
					t.Fatalf("run differs at %d: got %v, want %v", i, got, first)
				}
			}
		}
	}
}

func TestFuseRRFSingleListPreservesOrder(t *testing.T) {
	lists := [][]retrieval.Candidate{
		{{Key: "first"}, {Key: "second"}, {Key: "third"}},
	}

	fused := retrieval.FuseRRF(lists, 60, 0)
	want := []string{"first", "second", "third"}
	for i, k := range keys(fused) {
		if k != want[i] {
			t.Errorf("position %d: got %s, want %s", i, k, want[i])
		}
	}
}

func TestFuseRRFTruncates(t *testing.T) {
	lists := [][]retrieval.Candidate{
		{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}},
	}

	fused := retrieval.FuseRRF(lists, 60, 2)
	if len(fused) != 2 {
		t.Fatalf("got %d candidates, want 2", len(fused))
	}
	if fused[0].Key != "a" || fused[1].Key != "b" {
		t.Errorf("got %v, want [a b]", keys(fused))
	}
}

func TestFuseRRFPayloadFromFirstAppearance(t *testing.T) {
	lists := [][]retrieval.Candidate{
		{{Key: "a", Payload: "dense"}},
		{{Key: "a", Payload: "lexical"}},
	}

	fused := retrieval.FuseRRF(lists, 60, 0)
	if fused[0].Payload != "dense" {
		t.Errorf("payload: got %v, want dense", fused[0].Payload)
	}
}

func TestFuseRRFDefaultK(t *testing.T) {
	lists := [][]retrieval.Candidate{{{Key: "a"}}}

	fused := retrieval.FuseRRF(lists, 0, 0)
	want := 1.0 / float64(retrieval.DefaultKRRF+1)
	if fused[0].Score != want {
		t.Errorf("score: got %f, want %f", fused[0].Score, want)
	}
}

func TestFuseRRFEmpty(t *testing.T) {
	if fused := retrieval.FuseRRF(nil, 60, 10); len(fused) != 0 {
		t.Errorf("got %d candidates, want 0", len(fused))
	}
}
