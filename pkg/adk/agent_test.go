package adk

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTool records executions and returns a canned result.
type fakeTool struct {
	name     string
	critical bool
	result   string
	err      error
	calls    int
	lastArgs map[string]interface{}
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "test tool " + f.name }
func (f *fakeTool) Critical() bool      { return f.critical }
func (f *fakeTool) Schema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}

func (f *fakeTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	f.calls++
	f.lastArgs = args
	return f.result, f.err
}

func okFile(path string) string {
	payload, _ := json.Marshal(map[string]interface{}{"status": "ok", "output_file": path})
	return string(payload)
}

func pipelineTools(dir string) (collect, assess, gapmap, bench *fakeTool) {
	collect = &fakeTool{name: ToolCollect, critical: true, result: okFile(filepath.Join(dir, "sfdc_raw.json"))}
	assess = &fakeTool{name: ToolAssess, critical: true, result: okFile(filepath.Join(dir, "gap_analysis.json"))}
	gapmap = &fakeTool{name: ToolGapMap, result: okFile(filepath.Join(dir, "backlog.json"))}
	bench = &fakeTool{name: ToolBenchmark, result: okFile(filepath.Join(dir, "sscf_report.json"))}
	return
}

func registerAll(o *Orchestrator, tools ...Tool) {
	for _, t := range tools {
		o.RegisterTool(t)
	}
}

const testTask = "Run the pipeline for org=acme env=test dry_run=true"

func TestScriptedPipelineRunsInOrder(t *testing.T) {
	dir := t.TempDir()
	collect, assess, gapmap, bench := pipelineTools(dir)

	orch := NewOrchestrator(NewScriptedProvider())
	registerAll(orch, collect, assess, gapmap, bench)

	state, err := orch.Run(context.Background(), testTask)
	require.NoError(t, err)
	require.Equal(t, PhaseGating, state.Phase)
	require.Equal(t, 5, state.Turns)
	require.False(t, state.Truncated)

	for _, tool := range []*fakeTool{collect, assess, gapmap, bench} {
		require.Equal(t, 1, tool.calls, "tool %s", tool.name)
	}
	require.Equal(t, filepath.Join(dir, "gap_analysis.json"), state.GapAnalysis)
	require.Equal(t, filepath.Join(dir, "backlog.json"), state.Backlog)
	require.Equal(t, filepath.Join(dir, "sscf_report.json"), state.SSCFReport)
	require.Contains(t, state.Summary, "acme")

	// Each stage consumed the previous stage's artifact.
	require.Equal(t, filepath.Join(dir, "gap_analysis.json"), gapmap.lastArgs["gap_analysis"])
	require.Equal(t, filepath.Join(dir, "backlog.json"), bench.lastArgs["backlog"])
}

func TestCriticalToolFailureAborts(t *testing.T) {
	dir := t.TempDir()
	collect, assess, gapmap, bench := pipelineTools(dir)
	assess.err = fmt.Errorf("catalog unreadable")

	orch := NewOrchestrator(NewScriptedProvider())
	registerAll(orch, collect, assess, gapmap, bench)

	_, err := orch.Run(context.Background(), testTask)
	require.Error(t, err)
	require.Contains(t, err.Error(), ToolAssess)
	require.Contains(t, err.Error(), "catalog unreadable")
	require.Zero(t, gapmap.calls, "downstream stages must not run after a critical failure")
}

func TestDownstreamFailureFeedsBack(t *testing.T) {
	dir := t.TempDir()
	collect, assess, gapmap, bench := pipelineTools(dir)
	gapmap.err = fmt.Errorf("crosswalk missing")

	orch := NewOrchestrator(NewScriptedProvider())
	registerAll(orch, collect, assess, gapmap, bench)

	state, err := orch.Run(context.Background(), testTask)
	require.NoError(t, err, "non-critical failures degrade, never abort")
	require.Equal(t, PhaseGating, state.Phase)
	require.Equal(t, filepath.Join(dir, "gap_analysis.json"), state.GapAnalysis)
	require.Empty(t, state.Backlog)
	require.Zero(t, bench.calls)
	require.Contains(t, state.Summary, ToolGapMap)
}

func TestTurnCeilingTruncates(t *testing.T) {
	dir := t.TempDir()
	collect := &fakeTool{name: ToolCollect, critical: true, result: okFile(filepath.Join(dir, "x.json"))}

	// A provider that never finishes: it requests the same tool forever.
	orch := NewOrchestrator(loopingProvider{})
	orch.RegisterTool(collect)
	orch.SetMaxTurns(3)

	state, err := orch.Run(context.Background(), testTask)
	require.NoError(t, err)
	require.True(t, state.Truncated)
	require.Equal(t, PhaseGating, state.Phase)
	require.Contains(t, state.Summary, "max_turns=3")
	require.Equal(t, 3, collect.calls)
}

type loopingProvider struct{}

func (loopingProvider) ListModels(ctx context.Context) ([]string, error) { return nil, nil }

func (loopingProvider) GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error) {
	return "", &ToolCall{ToolName: ToolCollect, Args: map[string]interface{}{}}, nil
}

func TestUnknownToolIsReported(t *testing.T) {
	orch := NewOrchestrator(&oneShotProvider{tool: "no_such_tool"})
	state, err := orch.Run(context.Background(), testTask)
	require.NoError(t, err)
	require.Equal(t, PhaseGating, state.Phase)
}

// oneShotProvider calls one tool, then finishes.
type oneShotProvider struct {
	tool string
	done bool
}

func (p *oneShotProvider) ListModels(ctx context.Context) ([]string, error) { return nil, nil }

func (p *oneShotProvider) GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error) {
	if p.done {
		return "finished", nil, nil
	}
	p.done = true
	return "", &ToolCall{ToolName: p.tool, Args: map[string]interface{}{}}, nil
}

func writeGap(t *testing.T, findings string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gap_analysis.json")
	body := fmt.Sprintf(`{"assessment_id":"a1","findings":%s}`, findings)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExtractCriticalFails(t *testing.T) {
	path := writeGap(t, `[
		{"control_id":"SBS-AUTH-001","status":"fail","severity":"critical"},
		{"control_id":"SBS-ACS-003","status":"pass","severity":"critical"},
		{"control_id":"SBS-AUTH-003","status":"fail","severity":"moderate"},
		{"control_id":"SBS-OAUTH-001","status":"fail","severity":"critical"}
	]`)

	ids, err := ExtractCriticalFails(path)
	require.NoError(t, err)
	require.Equal(t, []string{"SBS-AUTH-001", "SBS-OAUTH-001"}, ids)
}

func TestExtractScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sscf_report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"overall_score":0.625,"overall_status":"amber"}`), 0o644))

	score, err := ExtractScore(path)
	require.NoError(t, err)
	require.Equal(t, 0.625, score)
}

func TestGatePolicy(t *testing.T) {
	gapPath := writeGap(t, `[{"control_id":"SBS-AUTH-001","status":"fail","severity":"critical"}]`)
	base := RunState{Phase: PhaseGating, GapAnalysis: gapPath}

	blocked, err := Gate(base, false, false)
	require.NoError(t, err)
	require.Equal(t, PhaseBlocked, blocked.Phase)
	require.Equal(t, []string{"SBS-AUTH-001"}, blocked.CriticalFails)

	approved, err := Gate(base, false, true)
	require.NoError(t, err)
	require.Equal(t, PhaseDone, approved.Phase)

	dry, err := Gate(base, true, false)
	require.NoError(t, err)
	require.Equal(t, PhaseDone, dry.Phase)
}

func TestGateCleanRun(t *testing.T) {
	gapPath := writeGap(t, `[{"control_id":"SBS-AUTH-001","status":"pass","severity":"critical"}]`)
	state, err := Gate(RunState{Phase: PhaseGating, GapAnalysis: gapPath}, false, false)
	require.NoError(t, err)
	require.Equal(t, PhaseDone, state.Phase)
	require.Empty(t, state.CriticalFails)
}
