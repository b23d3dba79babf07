package wrappers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/user/posture-adk/pkg/adk"
	"github.com/user/posture-adk/pkg/crosswalk"
	"github.com/user/posture-adk/pkg/engine"
)

// GapMapWrapper maps assessment findings onto the SSCF crosswalk and writes
// backlog.json plus the human-readable gap matrix.
type GapMapWrapper struct {
	CatalogPath string
	MappingPath string
	SSCFMapPath string
	OutBase     string
	Now         time.Time
}

func (g *GapMapWrapper) Name() string {
	return adk.ToolGapMap
}

func (g *GapMapWrapper) Description() string {
	return "Map gap-analysis findings to SSCF controls and produce a prioritised remediation backlog. " +
		"Reads gap_analysis.json, writes matrix.md and backlog.json."
}

func (g *GapMapWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"gap_analysis": map[string]interface{}{
				"type":        "string",
				"description": "Path to gap_analysis.json produced by oscal_assess_assess",
			},
		},
		"required": []string{"gap_analysis"},
	}
}

// Critical reports false: a mapping failure still leaves the gap analysis
// itself usable, so the model may report partial results.
func (g *GapMapWrapper) Critical() bool {
	return false
}

func (g *GapMapWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	gapPath := stringArg(args, "gap_analysis")
	if gapPath == "" {
		return "", fmt.Errorf("gap_analysis argument is required")
	}

	gap, err := crosswalk.LoadGapAnalysis(gapPath)
	if err != nil {
		return "", err
	}
	catalog, err := engine.LoadCatalog(g.CatalogPath)
	if err != nil {
		return "", err
	}
	legacy, err := crosswalk.LoadLegacyCrosswalk(g.MappingPath)
	if err != nil {
		return "", err
	}
	sscf, err := crosswalk.LoadSSCFCrosswalk(g.SSCFMapPath)
	if err != nil {
		return "", err
	}

	backlog := crosswalk.Map(gap, crosswalk.MapInput{
		CatalogByID:    catalog.ByID(),
		CatalogVersion: catalog.Meta.Version,
		Legacy:         legacy.ByLegacyID(),
		SSCF:           sscf,
		Now:            g.Now,
	})

	dir := filepath.Dir(gapPath)
	outJSON := filepath.Join(dir, "backlog.json")
	outMD := filepath.Join(dir, "matrix.md")
	if err := writeJSON(outJSON, backlog); err != nil {
		return "", err
	}
	if err := os.WriteFile(outMD, []byte(backlog.Matrix()), 0o644); err != nil {
		return "", fmt.Errorf("writing matrix: %w", err)
	}

	adk.Infof("[oscal-gap-map] mapped %d, unmapped %d, invalid %d -> %s",
		len(backlog.MappedItems), len(backlog.UnmappedItems), len(backlog.InvalidMappingEntries), outJSON)
	return okResult(outJSON, map[string]interface{}{
		"matrix": outMD,
	}), nil
}
