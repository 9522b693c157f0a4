// Package lawentries implements the legal corpus domain: immutable law and
// definition entries with embeddings computed once at ingestion, plus the
// dense and lexical search primitives used by hybrid retrieval.
package lawentries

import (
	"fmt"
	"strings"
)

// Entry types in the law corpus.
const (
	TypeLaw        = "Law"
	TypeDefinition = "Definition"
)

// Entry is one law article or definition record. Word carries the defined
// term and is required iff Type is Definition. Entries are immutable once
// inserted; the embedding is computed at ingestion and never recomputed.
type Entry struct {
	EntID     int64   `json:"ent_id"`
	BelongsTo string  `json:"belongs_to"`
	ArtNum    string  `json:"art_num"`
	Type      string  `json:"type"`
	Contents  string  `json:"contents"`
	Word      *string `json:"word,omitempty"`
}

// CreateCommand carries the data needed to ingest a new law entry.
type CreateCommand struct {
	BelongsTo string  `json:"belongs_to"`
	ArtNum    string  `json:"art_num"`
	Type      string  `json:"type"`
	Contents  string  `json:"contents"`
	Word      *string `json:"word,omitempty"`
}

// Hit is one ranked search result.
type Hit struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}

// SearchFilters restrict search to one law and/or entry type. Empty fields
// are unfiltered; the value "All" for BelongsTo is treated as unfiltered.
type SearchFilters struct {
	BelongsTo string `json:"belongs_to,omitempty"`
	Type      string `json:"type,omitempty"`
}

const bulletContentLimit = 800

// Bullet formats an entry as a compact prompt line: identifier, law, article,
// type, defined word for definitions, and contents trimmed to a bounded length.
func (e Entry) Bullet() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- [ent_id=%d] law=%s, article=%s, type=%s", e.EntID, e.BelongsTo, e.ArtNum, e.Type)
	if e.Type == TypeDefinition && e.Word != nil {
		fmt.Fprintf(&sb, ", defines=%q", *e.Word)
	}

	contents := e.Contents
	if len(contents) > bulletContentLimit {
		contents = contents[:bulletContentLimit]
	}
	fmt.Fprintf(&sb, ": %s", contents)

	return sb.String()
}
