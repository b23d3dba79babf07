// Package benchmark aggregates mapped findings into weighted compliance
// scores per SSCF governance domain and an overall posture.
package benchmark

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IndexControl is one SSCF framework control with its governance domain.
type IndexControl struct {
	SSCFControlID string `yaml:"sscf_control_id"`
	Domain        string `yaml:"domain"`
	Title         string `yaml:"title"`
	OwnerTeam     string `yaml:"owner_team"`
}

// Index is the SSCF control index keyed by framework control id.
type Index struct {
	controls map[string]IndexControl
}

// LoadIndex reads the SSCF control index YAML.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read SSCF index: %w", err)
	}
	var doc struct {
		Controls []IndexControl `yaml:"controls"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse SSCF index %s: %w", path, err)
	}
	return NewIndex(doc.Controls), nil
}

// NewIndex builds an index from a control list, skipping entries without an id.
func NewIndex(controls []IndexControl) *Index {
	idx := &Index{controls: make(map[string]IndexControl, len(controls))}
	for _, c := range controls {
		if c.SSCFControlID != "" {
			idx.controls[c.SSCFControlID] = c
		}
	}
	return idx
}

// Lookup returns the index entry for a framework control id.
func (i *Index) Lookup(id string) (IndexControl, bool) {
	c, ok := i.controls[id]
	return c, ok
}

// Len returns the number of indexed controls.
func (i *Index) Len() int {
	return len(i.controls)
}

// All returns every indexed control (unordered).
func (i *Index) All() []IndexControl {
	out := make([]IndexControl, 0, len(i.controls))
	for _, c := range i.controls {
		out = append(out, c)
	}
	return out
}
