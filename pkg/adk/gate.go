package adk

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExtractCriticalFails reads a gap analysis JSON file and returns the ids of
// controls that both failed and carry critical severity. The two conditions
// are independent: a critical control that passed and a failed moderate
// control are both clean.
func ExtractCriticalFails(gapPath string) ([]string, error) {
	data, err := os.ReadFile(gapPath)
	if err != nil {
		return nil, fmt.Errorf("reading gap analysis: %w", err)
	}
	var gap struct {
		Findings []struct {
			ControlID string `json:"control_id"`
			Status    string `json:"status"`
			Severity  string `json:"severity"`
		} `json:"findings"`
	}
	if err := json.Unmarshal(data, &gap); err != nil {
		return nil, fmt.Errorf("parsing gap analysis: %w", err)
	}
	var ids []string
	for _, f := range gap.Findings {
		if f.Status == "fail" && f.Severity == "critical" {
			ids = append(ids, f.ControlID)
		}
	}
	return ids, nil
}

// ExtractScore reads the overall score from an SSCF report JSON file.
func ExtractScore(reportPath string) (float64, error) {
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return 0, fmt.Errorf("reading benchmark report: %w", err)
	}
	var report struct {
		OverallScore float64 `json:"overall_score"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("parsing benchmark report: %w", err)
	}
	return report.OverallScore, nil
}

// Gate applies the critical-fail policy to a finished run and returns the
// final state. A run with critical failed findings moves to blocked unless
// it is a dry run or the operator pre-approved critical failures. Blocked
// runs must not emit a success artifact; the caller owns the exit code.
func Gate(state RunState, dryRun, approved bool) (RunState, error) {
	if state.GapAnalysis != "" {
		ids, err := ExtractCriticalFails(state.GapAnalysis)
		if err != nil {
			return state, err
		}
		state.CriticalFails = ids
	}
	if state.SSCFReport != "" {
		score, err := ExtractScore(state.SSCFReport)
		if err != nil {
			return state, err
		}
		state.Score = score
	}

	if len(state.CriticalFails) > 0 && !dryRun && !approved {
		Infof("Gate: %d critical failed control(s), run blocked", len(state.CriticalFails))
		return state.withPhase(PhaseBlocked), nil
	}
	return state.withPhase(PhaseDone), nil
}
