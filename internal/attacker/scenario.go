// Package attacker generates structured adversarial misuse scenarios for a
// target document from retrieved law context. The batch contract is strict:
// exactly maxN scenarios, every scenario citation-complete, or a hard error.
package attacker

import (
	"fmt"
	"strings"
)

const attackVectorMarker = "(Attack vector: "

// Scenario is one adversarial misuse scenario. Description always ends with a
// literal "(Attack vector: …)" annotation; LawCitations and PRDSpans are
// non-empty for every valid scenario.
type Scenario struct {
	Description         string   `json:"description"`
	PotentialViolations []string `json:"potential_violations"`
	Jurisdictions       []string `json:"jurisdictions"`
	LawCitations        []int64  `json:"law_citations"`
	Rationale           string   `json:"rationale"`
	PRDSpans            []int    `json:"prd_spans"`
}

// Batch is the JSON shape the generator must return.
type Batch struct {
	Scenarios []Scenario `json:"scenarios"`
}

// Normalize applies the one leniency the contract allows: a description
// missing its attack-vector annotation gets "(Attack vector: unspecified)"
// appended rather than rejected.
func (s *Scenario) Normalize() {
	desc := strings.TrimSpace(s.Description)
	if !strings.Contains(desc, attackVectorMarker) || !strings.HasSuffix(desc, ")") {
		desc += " (Attack vector: unspecified)"
	}
	s.Description = desc
}

// Validate checks the citation-completeness contract for one scenario.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("description empty")
	}
	if len(s.LawCitations) == 0 {
		return fmt.Errorf("law_citations empty")
	}
	if len(s.PRDSpans) == 0 {
		return fmt.Errorf("prd_spans empty")
	}
	return nil
}

// ValidateBatch normalizes every scenario, then enforces the batch contract:
// exactly maxN scenarios, each individually valid. It returns every violation
// found, not just the first.
func ValidateBatch(batch *Batch, maxN int) []error {
	var errs []error

	if len(batch.Scenarios) != maxN {
		errs = append(errs, fmt.Errorf("expected %d scenarios, got %d", maxN, len(batch.Scenarios)))
	}

	for i := range batch.Scenarios {
		batch.Scenarios[i].Normalize()
		if err := batch.Scenarios[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("scenario %d: %w", i, err))
		}
	}

	return errs
}
