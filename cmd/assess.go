package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/posture-adk/pkg/engine"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run the deterministic SBS gap assessment",
	Long: `Evaluates every control in the SBS catalog against a sfdc-connect
collector snapshot and writes gap_analysis.json. One finding per control;
controls whose scope was not collected resolve to not_applicable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		collectorPath, _ := cmd.Flags().GetString("collector-output")
		org, _ := cmd.Flags().GetString("org")
		env, _ := cmd.Flags().GetString("env")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		outPath, _ := cmd.Flags().GetString("out")

		catalog, err := engine.LoadCatalog(viper.GetString("controls"))
		if err != nil {
			return err
		}

		opts := engine.AssessOptions{Org: org, Env: env, DryRun: dryRun}
		scope := engine.EmptyScopeData()
		if !dryRun {
			if collectorPath == "" {
				return fmt.Errorf("--collector-output is required unless --dry-run is set")
			}
			collected, err := engine.LoadCollectorOutput(collectorPath)
			if err != nil {
				return err
			}
			scope = collected.Data
			if opts.Org == "" {
				opts.Org = collected.Org
			}
			if collected.Env != "" {
				opts.Env = collected.Env
			}
		}

		findings := engine.Assess(scope, catalog, opts)
		gap := engine.NewGapAnalysis(findings, opts)

		if outPath == "" {
			outPath = "gap_analysis.json"
		}
		if err := writeJSONFile(outPath, gap); err != nil {
			return err
		}

		counts := engine.StatusCounts(findings)
		fmt.Printf("Assessed %d controls: %d pass, %d partial, %d fail, %d not_applicable\n",
			len(findings),
			counts[engine.StatusPass], counts[engine.StatusPartial],
			counts[engine.StatusFail], counts[engine.StatusNotApplicable])
		fmt.Printf("Wrote %s\n", outPath)
		return nil
	},
}

func writeJSONFile(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	data, err := marshalIndent(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	assessCmd.Flags().String("collector-output", "", "Path to sfdc-connect collect output JSON")
	assessCmd.Flags().String("org", "", "Org identifier (defaults to the value in the collector output)")
	assessCmd.Flags().String("env", "dev", "Environment label (dev, test, prod)")
	assessCmd.Flags().Bool("dry-run", false, "Emit weak-org stub findings without a collector snapshot")
	assessCmd.Flags().String("out", "", "Output path (default gap_analysis.json)")
	rootCmd.AddCommand(assessCmd)
}
