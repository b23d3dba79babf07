package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Control is one entry of the imported SBS controls catalog. Loaded once per
// run and never mutated.
type Control struct {
	ControlID   string `json:"control_id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Statement   string `json:"statement,omitempty"`
	RiskLevel   string `json:"risk_level"`
	Remediation string `json:"remediation,omitempty"`
}

// Severity maps the catalog's declared risk level onto the severity enum,
// defaulting to moderate when the catalog is silent or carries an unknown value.
func (c Control) Severity() Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(c.RiskLevel)))
	if !s.Valid() {
		return SeverityModerate
	}
	return s
}

// Catalog is the normalized SBS controls catalog produced by the importer.
type Catalog struct {
	Source struct {
		BenchmarkName string `json:"benchmark_name"`
		ReleaseTag    string `json:"release_tag"`
	} `json:"source"`
	Meta struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"catalog"`
	Controls []Control `json:"controls"`
}

// LoadCatalog reads a normalized controls catalog JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(cat.Controls) == 0 {
		return nil, fmt.Errorf("catalog %s contains no controls", path)
	}
	return &cat, nil
}

// ByID indexes the catalog controls by control id.
func (c *Catalog) ByID() map[string]Control {
	idx := make(map[string]Control, len(c.Controls))
	for _, ctrl := range c.Controls {
		if ctrl.ControlID != "" {
			idx[ctrl.ControlID] = ctrl
		}
	}
	return idx
}
