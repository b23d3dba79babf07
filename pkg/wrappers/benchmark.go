package wrappers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/user/posture-adk/pkg/adk"
	"github.com/user/posture-adk/pkg/benchmark"
	"github.com/user/posture-adk/pkg/crosswalk"
)

// BenchmarkWrapper scores the remediation backlog against the SSCF control
// index and writes the domain-level scorecard.
type BenchmarkWrapper struct {
	IndexPath string
	Threshold float64
	OutBase   string
	Now       time.Time
}

func (b *BenchmarkWrapper) Name() string {
	return adk.ToolBenchmark
}

func (b *BenchmarkWrapper) Description() string {
	return "Benchmark the remediation backlog against the SSCF control index to produce " +
		"a domain-level compliance scorecard (overall_score, overall_status, per-domain breakdown)."
}

func (b *BenchmarkWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"backlog": map[string]interface{}{
				"type":        "string",
				"description": "Path to backlog.json produced by oscal_gap_map",
			},
		},
		"required": []string{"backlog"},
	}
}

// Critical reports false: scoring can be re-run from the backlog at any
// time, so a failure here degrades the run instead of aborting it.
func (b *BenchmarkWrapper) Critical() bool {
	return false
}

func (b *BenchmarkWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	backlogPath := stringArg(args, "backlog")
	if backlogPath == "" {
		return "", fmt.Errorf("backlog argument is required")
	}

	backlog, err := crosswalk.LoadBacklog(backlogPath)
	if err != nil {
		return "", err
	}
	index, err := benchmark.LoadIndex(b.IndexPath)
	if err != nil {
		return "", err
	}

	threshold := b.Threshold
	if threshold == 0 {
		threshold = benchmark.DefaultThreshold
	}
	report := benchmark.Run(backlog, index, threshold, b.Now)

	outPath := filepath.Join(filepath.Dir(backlogPath), "sscf_report.json")
	if err := writeJSON(outPath, report); err != nil {
		return "", err
	}

	adk.Infof("[sscf-benchmark] overall %.4f (%s) -> %s",
		report.OverallScore, report.OverallStatus, outPath)
	return okResult(outPath, map[string]interface{}{
		"overall_score":  report.OverallScore,
		"overall_status": report.OverallStatus,
	}), nil
}
