package adk

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool represents an executable pipeline stage for the orchestrator.
// Critical marks the critical-path stages (collection, assessment): a hidden
// failure there would produce zero findings and a false "fully compliant"
// result, so those failures abort the whole run instead of being fed back to
// the model.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]interface{} // JSON schema for arguments
	Critical() bool
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ToolCall represents a request from the LLM to execute a tool.
type ToolCall struct {
	ToolName string
	Args     map[string]interface{}
}

// Message represents a chat message.
type Message struct {
	Role    string // "user", "model", "function"
	Content string
}

// LLMProvider defines the interface for the driving model.
type LLMProvider interface {
	GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Phase is the orchestration loop's state.
type Phase string

const (
	PhaseAwaitingModelTurn Phase = "awaiting_model_turn"
	PhaseDispatchingTools  Phase = "dispatching_tools"
	PhaseGating            Phase = "gating"
	PhaseDone              Phase = "done"
	PhaseBlocked           Phase = "blocked"
)

// MaxTurns is the hard ceiling on model turns. It is a safety bound against
// runaway loops, not a performance target.
const MaxTurns = 20

// RunState is the per-turn loop state. Each turn produces a new record via
// the with* methods rather than mutating shared state.
type RunState struct {
	Phase         Phase    `json:"phase"`
	Turns         int      `json:"turns"`
	GapAnalysis   string   `json:"gap_analysis,omitempty"`
	Backlog       string   `json:"backlog,omitempty"`
	SSCFReport    string   `json:"sscf_report,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Truncated     bool     `json:"truncated,omitempty"`
	Score         float64  `json:"overall_score"`
	CriticalFails []string `json:"critical_fails"`
}

func (s RunState) withPhase(p Phase) RunState {
	s.Phase = p
	return s
}

func (s RunState) withTurn(n int) RunState {
	s.Turns = n
	return s
}

func (s RunState) withSummary(text string) RunState {
	s.Summary = text
	return s
}

func (s RunState) withTruncated() RunState {
	s.Truncated = true
	return s
}

// withArtifact records a tool's output file path under the pipeline slot
// owned by that tool.
func (s RunState) withArtifact(toolName, resultJSON string) RunState {
	var result struct {
		OutputFile string `json:"output_file"`
	}
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil || result.OutputFile == "" {
		return s
	}
	switch toolName {
	case ToolAssess:
		s.GapAnalysis = result.OutputFile
	case ToolGapMap:
		s.Backlog = result.OutputFile
	case ToolBenchmark:
		s.SSCFReport = result.OutputFile
	}
	return s
}

// Canonical pipeline tool names, shared by wrappers and artifact tracking.
const (
	ToolCollect   = "sfdc_connect_collect"
	ToolAssess    = "oscal_assess_assess"
	ToolGapMap    = "oscal_gap_map"
	ToolBenchmark = "sscf_benchmark_benchmark"
)

// Orchestrator drives the assessment pipeline through a model tool-call loop.
type Orchestrator struct {
	llm      LLMProvider
	tools    map[string]Tool
	system   string
	maxTurns int
	history  []Message
}

// NewOrchestrator creates an orchestrator with the given LLM provider.
func NewOrchestrator(llm LLMProvider) *Orchestrator {
	return &Orchestrator{
		llm:      llm,
		tools:    make(map[string]Tool),
		maxTurns: MaxTurns,
	}
}

// RegisterTool adds a tool to the orchestrator's registry.
func (o *Orchestrator) RegisterTool(t Tool) {
	o.tools[t.Name()] = t
}

// SetSystemPrompt sets the system prompt passed to the provider via history.
func (o *Orchestrator) SetSystemPrompt(prompt string) {
	o.system = prompt
}

// SetMaxTurns overrides the turn ceiling. Used by tests; production runs
// keep MaxTurns.
func (o *Orchestrator) SetMaxTurns(n int) {
	if n > 0 {
		o.maxTurns = n
	}
}

func (o *Orchestrator) toolList() []Tool {
	list := make([]Tool, 0, len(o.tools))
	for _, t := range o.tools {
		list = append(list, t)
	}
	return list
}

// Run executes the tool-call loop for one task and returns the loop state at
// the gating phase. Strictly sequential: each dispatched tool runs to
// completion before the next model turn is requested. Only critical-path
// tool failures abort the run; downstream failures are converted into a
// structured error payload and fed back to the model, which may report
// partial results instead.
func (o *Orchestrator) Run(ctx context.Context, task string) (RunState, error) {
	state := RunState{Phase: PhaseAwaitingModelTurn}

	if o.system != "" {
		o.history = append(o.history, Message{Role: "system", Content: o.system})
	}
	o.history = append(o.history, Message{Role: "user", Content: task})

	for turn := 0; turn < o.maxTurns; turn++ {
		state = state.withTurn(turn + 1).withPhase(PhaseAwaitingModelTurn)

		respText, toolCall, err := o.llm.GenerateResponse(ctx, o.history, o.toolList())
		if err != nil {
			return state, fmt.Errorf("model turn %d: %w", turn+1, err)
		}

		// Completion: capture the final summary and move to gating.
		if toolCall == nil {
			o.history = append(o.history, Message{Role: "model", Content: respText})
			return state.withSummary(respText).withPhase(PhaseGating), nil
		}

		state = state.withPhase(PhaseDispatchingTools)
		Debugf("Executing tool: %s with args: %v", toolCall.ToolName, toolCall.Args)

		o.history = append(o.history, Message{
			Role:    "model",
			Content: fmt.Sprintf("I will call tool %s with args %v", toolCall.ToolName, toolCall.Args),
		})

		tool, exists := o.tools[toolCall.ToolName]
		if !exists {
			o.history = append(o.history, Message{
				Role:    "function",
				Content: fmt.Sprintf("Error: tool %s not found", toolCall.ToolName),
			})
			continue
		}

		result, err := tool.Execute(ctx, toolCall.Args)
		if err != nil {
			if tool.Critical() {
				return state, fmt.Errorf("critical tool %q failed, aborting run: %w", tool.Name(), err)
			}
			result = errorPayload(tool.Name(), err)
		}
		state = state.withArtifact(toolCall.ToolName, result)

		o.history = append(o.history, Message{
			Role:    "function",
			Content: fmt.Sprintf("Tool %s returned: %s", toolCall.ToolName, result),
		})
	}

	// Turn ceiling hit: force completion with a truncation marker.
	Infof("WARNING: reached max turns (%d), loop hard-stopped", o.maxTurns)
	return state.
		withTruncated().
		withSummary(fmt.Sprintf("[max_turns=%d exceeded]", o.maxTurns)).
		withPhase(PhaseGating), nil
}

// errorPayload builds the structured error fed back to the model when a
// downstream (non-critical) tool fails.
func errorPayload(toolName string, err error) string {
	payload, _ := json.Marshal(map[string]string{
		"status":  "error",
		"tool":    toolName,
		"message": err.Error(),
	})
	return string(payload)
}
