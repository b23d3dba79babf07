// Package crosswalk reconciles assessment findings expressed in a legacy
// control vocabulary against the SBS catalog and the SSCF framework mapping,
// producing a remediation backlog.
package crosswalk

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LegacyMapping is one row of the legacy→SBS crosswalk table.
type LegacyMapping struct {
	LegacyControlID   string `yaml:"legacy_control_id"`
	SBSControlID      string `yaml:"sbs_control_id"`
	MappingConfidence string `yaml:"mapping_confidence"`
	Notes             string `yaml:"notes"`
}

// LegacyCrosswalk is the legacy→SBS control mapping file.
type LegacyCrosswalk struct {
	Mappings []LegacyMapping `yaml:"mappings"`
}

// LoadLegacyCrosswalk reads the legacy control mapping YAML.
func LoadLegacyCrosswalk(path string) (*LegacyCrosswalk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read legacy crosswalk: %w", err)
	}
	var cw LegacyCrosswalk
	if err := yaml.Unmarshal(data, &cw); err != nil {
		return nil, fmt.Errorf("parse legacy crosswalk %s: %w", path, err)
	}
	return &cw, nil
}

// ByLegacyID indexes the crosswalk rows by legacy control id. Rows without a
// legacy id are skipped.
func (c *LegacyCrosswalk) ByLegacyID() map[string]LegacyMapping {
	idx := make(map[string]LegacyMapping, len(c.Mappings))
	for _, row := range c.Mappings {
		legacy := strings.TrimSpace(row.LegacyControlID)
		if legacy != "" {
			idx[legacy] = row
		}
	}
	return idx
}

// SSCFAssociation links an SBS control to one SSCF framework control.
type SSCFAssociation struct {
	SSCFControlID string `yaml:"sscf_control_id" json:"sscf_control_id"`
}

// SSCFCrosswalk is the SBS→SSCF mapping: per-control overrides first, then
// category-level defaults, else no association.
type SSCFCrosswalk struct {
	DefaultsByCategory map[string][]SSCFAssociation `yaml:"defaults_by_category"`
	ControlOverrides   map[string][]SSCFAssociation `yaml:"control_overrides"`
}

// LoadSSCFCrosswalk reads the SBS→SSCF mapping YAML.
func LoadSSCFCrosswalk(path string) (*SSCFCrosswalk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read SSCF crosswalk: %w", err)
	}
	var cw SSCFCrosswalk
	if err := yaml.Unmarshal(data, &cw); err != nil {
		return nil, fmt.Errorf("parse SSCF crosswalk %s: %w", path, err)
	}
	return &cw, nil
}

// Associations resolves the SSCF associations for an SBS control: the
// control-specific override wins, then the category default, else empty.
func (c *SSCFCrosswalk) Associations(controlID, category string) []SSCFAssociation {
	if c == nil {
		return nil
	}
	if assocs, ok := c.ControlOverrides[controlID]; ok && len(assocs) > 0 {
		return assocs
	}
	if assocs, ok := c.DefaultsByCategory[category]; ok && len(assocs) > 0 {
		return assocs
	}
	return nil
}
