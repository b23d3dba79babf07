package adk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ScriptedProvider is an offline LLMProvider that drives the pipeline
// stages in their fixed order: collect, assess, map, benchmark, summary.
// It needs no API key and always produces the same tool sequence for the
// same task, which makes dry runs and loop tests reproducible.
type ScriptedProvider struct {
	step int
}

func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{}
}

func (s *ScriptedProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"scripted"}, nil
}

func (s *ScriptedProvider) GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error) {
	task := firstUserMessage(history)
	org := taskField(task, "org")
	env := taskField(task, "env")
	dryRun := taskField(task, "dry_run") == "true"

	// A downstream stage reported an error: stop dispatching and report
	// what completed.
	if failed, tool := lastToolErrored(history); failed {
		s.step = 5
		return fmt.Sprintf("Pipeline stopped after %s failed; earlier stage outputs are still available.", tool), nil, nil
	}

	s.step++
	switch s.step {
	case 1:
		return "", &ToolCall{ToolName: ToolCollect, Args: map[string]interface{}{
			"org": org, "scope": "all", "env": env, "dry_run": dryRun,
		}}, nil
	case 2:
		return "", &ToolCall{ToolName: ToolAssess, Args: map[string]interface{}{
			"org": org, "env": env, "dry_run": dryRun,
			"collector_output": lastOutputFile(history),
		}}, nil
	case 3:
		return "", &ToolCall{ToolName: ToolGapMap, Args: map[string]interface{}{
			"gap_analysis": lastOutputFile(history),
		}}, nil
	case 4:
		return "", &ToolCall{ToolName: ToolBenchmark, Args: map[string]interface{}{
			"backlog": lastOutputFile(history),
		}}, nil
	default:
		return fmt.Sprintf("Completed posture assessment for org %q (env %s).", org, env), nil, nil
	}
}

func firstUserMessage(history []Message) string {
	for _, m := range history {
		if m.Role == "user" {
			return m.Content
		}
	}
	return ""
}

// taskField extracts a "key=value" token from the task text.
func taskField(task, key string) string {
	for _, tok := range strings.Fields(task) {
		if strings.HasPrefix(tok, key+"=") {
			return strings.TrimPrefix(tok, key+"=")
		}
	}
	return ""
}

// lastOutputFile pulls the output_file value out of the most recent tool
// result message, so each stage consumes the previous stage's artifact.
func lastOutputFile(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "function" {
			continue
		}
		_, payload, found := strings.Cut(history[i].Content, "returned: ")
		if !found {
			return ""
		}
		var result struct {
			OutputFile string `json:"output_file"`
		}
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return ""
		}
		return result.OutputFile
	}
	return ""
}

func lastToolErrored(history []Message) (bool, string) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "function" {
			continue
		}
		_, payload, found := strings.Cut(history[i].Content, "returned: ")
		if !found {
			return false, ""
		}
		var result struct {
			Status string `json:"status"`
			Tool   string `json:"tool"`
		}
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return false, ""
		}
		return result.Status == "error", result.Tool
	}
	return false, ""
}
