package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/posture-adk/pkg/adk"
	"github.com/user/posture-adk/pkg/config"
	"github.com/user/posture-adk/pkg/memory"
	"github.com/user/posture-adk/pkg/wrappers"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full agent-orchestrated assessment pipeline",
	Long: `Drives collect, assess, map, and benchmark through the orchestration
loop, gates on failed critical controls, and persists the result to memory.

A gated (blocked) run writes no success artifact and exits with code 2.
Dry runs use the built-in scripted driver and need no API key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		adk.DebugEnabled = DebugMode

		org, _ := cmd.Flags().GetString("org")
		env, _ := cmd.Flags().GetString("env")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		approve, _ := cmd.Flags().GetBool("approve-critical")
		task, _ := cmd.Flags().GetString("task")
		snapshot, _ := cmd.Flags().GetString("snapshot")
		apiKey, _ := cmd.Flags().GetString("api-key")

		ctx := context.Background()
		provider, err := buildProvider(ctx, dryRun, apiKey)
		if err != nil {
			return err
		}
		if closer, ok := provider.(interface{ Close() }); ok {
			defer closer.Close()
		}

		outBase := viper.GetString("out-dir")
		orch := adk.NewOrchestrator(provider)
		orch.RegisterTool(&wrappers.CollectWrapper{Snapshot: snapshot, OutBase: outBase})
		orch.RegisterTool(&wrappers.AssessWrapper{
			CatalogPath: viper.GetString("controls"),
			OutBase:     outBase,
		})
		orch.RegisterTool(&wrappers.GapMapWrapper{
			CatalogPath: viper.GetString("controls"),
			MappingPath: viper.GetString("mapping"),
			SSCFMapPath: viper.GetString("sscf-map"),
			OutBase:     outBase,
		})
		orch.RegisterTool(&wrappers.BenchmarkWrapper{
			IndexPath: viper.GetString("sscf-index"),
			OutBase:   outBase,
		})
		orch.SetSystemPrompt(adk.GetSystemPrompt())

		if task == "" {
			task = fmt.Sprintf(
				"Run the full compliance posture pipeline for org=%s env=%s dry_run=%t and summarize the result.",
				org, env, dryRun)
		}

		// Surface prior runs so the model can call out posture drift.
		memPath, err := memory.DefaultPath()
		if err != nil {
			return err
		}
		store := memory.NewStore(memPath)
		prior, err := store.Load(org, memory.DefaultLimit)
		if err != nil {
			adk.Infof("WARNING: could not load assessment memory: %v", err)
		} else {
			task = prior + "\n\n" + task
		}

		state, err := orch.Run(ctx, task)
		if err != nil {
			return err
		}
		state, err = adk.Gate(state, dryRun, approve)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(state.Summary)

		if state.Phase == adk.PhaseBlocked {
			fmt.Fprintf(os.Stderr,
				"BLOCKED: %d critical control(s) failed: %v\n"+
					"Re-run with --approve-critical to accept the risk and record the result.\n",
				len(state.CriticalFails), state.CriticalFails)
			os.Exit(2)
		}

		resultPath := filepath.Join(outBase, "loop_result.json")
		if err := writeJSONFile(resultPath, state); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", resultPath)

		if err := store.Save(org, assessmentIDFromState(state), state.Score, state.CriticalFails); err != nil {
			adk.Infof("WARNING: could not save assessment to memory: %v", err)
		}
		return nil
	},
}

func buildProvider(ctx context.Context, dryRun bool, apiKey string) (adk.LLMProvider, error) {
	if dryRun {
		return adk.NewScriptedProvider(), nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	providerName := cfg.SelectedProvider
	if providerName == "" {
		providerName = "gemini"
	}
	if apiKey == "" {
		apiKey = cfg.GetAPIKey(providerName)
	}
	if apiKey == "" && providerName == "gemini" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured; run 'posture-adk config setup' or pass --api-key")
	}
	return adk.NewProvider(ctx, providerName, apiKey, cfg.SelectedModel)
}

// assessmentIDFromState derives the memory key from the gap analysis
// artifact, falling back to "unknown" when the run produced none.
func assessmentIDFromState(state adk.RunState) string {
	if state.GapAnalysis == "" {
		return "unknown"
	}
	data, err := os.ReadFile(state.GapAnalysis)
	if err != nil {
		return "unknown"
	}
	var gap struct {
		AssessmentID string `json:"assessment_id"`
	}
	if err := json.Unmarshal(data, &gap); err != nil || gap.AssessmentID == "" {
		return "unknown"
	}
	return gap.AssessmentID
}

func init() {
	runCmd.Flags().String("org", "", "Org alias or instance URL")
	runCmd.Flags().String("env", "dev", "Environment label (dev, test, prod)")
	runCmd.Flags().Bool("dry-run", false, "Run the pipeline offline with weak-org stub findings")
	runCmd.Flags().Bool("approve-critical", false, "Accept failed critical controls instead of blocking")
	runCmd.Flags().String("task", "", "Override the task given to the orchestrator")
	runCmd.Flags().String("snapshot", "", "Pre-collected sfdc-connect output to assess instead of a live org")
	runCmd.Flags().String("api-key", "", "API key override for the configured provider")
	_ = runCmd.MarkFlagRequired("org")
	rootCmd.AddCommand(runCmd)
}
