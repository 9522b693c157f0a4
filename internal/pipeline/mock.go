package pipeline

import (
	"fmt"

	"github.com/gavelhq/gavel/internal/attacker"
	"github.com/gavelhq/gavel/internal/auditor"
)

// defaultSeedPrompt seeds a conversation when the judgment produced no
// clarification question.
const defaultSeedPrompt = "Please review this finding and add any context that would change the assessment."

// mockScenarios substitutes templated scenarios citing the retrieved law ids
// when scenario generation is unavailable. The batch still honors the exact
// count contract so downstream stages see a normal batch.
func mockScenarios(entIDs []int64, maxN int) []attacker.Scenario {
	scenarios := make([]attacker.Scenario, maxN)
	for i := range scenarios {
		s := attacker.Scenario{
			Description:  fmt.Sprintf("Placeholder scenario %d: the documented design may conflict with the cited obligations. (Attack vector: unspecified)", i+1),
			LawCitations: entIDs,
			Rationale:    "Scenario generation was unavailable; this placeholder flags the retrieved citations for manual review.",
			PRDSpans:     []int{0},
		}
		if len(entIDs) == 0 {
			s.LawCitations = nil
		}
		scenarios[i] = s
	}
	return scenarios
}

// mockJudgment substitutes a templated judgment when adjudication is
// unavailable, so the issue still reaches a human with a usable prompt.
func mockJudgment(s attacker.Scenario) *auditor.Judgment {
	return &auditor.Judgment{
		Reasoning:             fmt.Sprintf("Automated adjudication was unavailable. Manual review required for: %s", s.Description),
		ClarificationQuestion: defaultSeedPrompt,
	}
}
