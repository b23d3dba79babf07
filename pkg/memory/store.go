// Package memory persists compact per-org assessment summaries across runs
// so the orchestrator can compare a new assessment against historical
// baselines ("score was 34%, now 51%").
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the maximum number of prior summaries surfaced per org.
const DefaultLimit = 5

// Record is one stored assessment summary.
type Record struct {
	ID           string   `json:"id"`
	Org          string   `json:"org"`
	AssessmentID string   `json:"assessment_id"`
	Score        float64  `json:"score"`
	CriticalFail []string `json:"critical_fails"`
	Summary      string   `json:"summary"`
	SavedAtUTC   string   `json:"saved_at_utc"`
}

// Store is a JSON-file-backed memory store, one file per store path.
type Store struct {
	path string
}

// NewStore opens (or lazily creates) a store at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the store alongside the user's config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".posture-adk", "memory.json"), nil
}

func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading memory store: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing memory store: %w", err)
	}
	return records, nil
}

// Save appends one assessment summary for an org.
func (s *Store) Save(org, assessmentID string, score float64, criticalFails []string) error {
	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, Record{
		ID:           uuid.New().String(),
		Org:          org,
		AssessmentID: assessmentID,
		Score:        score,
		CriticalFail: criticalFails,
		Summary:      summarize(org, assessmentID, score, criticalFails),
		SavedAtUTC:   time.Now().UTC().Format(time.RFC3339),
	})

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating memory dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding memory store: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing memory store: %w", err)
	}
	return nil
}

// Load returns a human-readable block of the most recent summaries for an
// org, newest last, suitable for prepending to the orchestrator's first user
// message.
func (s *Store) Load(org string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	records, err := s.load()
	if err != nil {
		return "", err
	}
	var matched []Record
	for _, r := range records {
		if r.Org == org {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return fmt.Sprintf("No prior assessments found in memory for org '%s'.", org), nil
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Prior assessment memory for org '%s':\n", org)
	for _, r := range matched {
		fmt.Fprintf(&b, "  - %s\n", r.Summary)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func summarize(org, assessmentID string, score float64, criticalFails []string) string {
	summary := fmt.Sprintf("Assessment %s for org '%s': overall_score=%.1f%%, critical_fails=%d",
		assessmentID, org, score*100, len(criticalFails))
	if len(criticalFails) > 0 {
		shown := criticalFails
		if len(shown) > 5 {
			shown = shown[:5]
		}
		summary += ": " + strings.Join(shown, ", ")
	}
	return summary
}
