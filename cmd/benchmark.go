package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/posture-adk/pkg/benchmark"
	"github.com/user/posture-adk/pkg/crosswalk"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Score the remediation backlog per SSCF domain",
	Long: `Aggregates the backlog's mapped findings into per-domain compliance
scores, bands each domain green/amber/red against the threshold, and writes
the SSCF scorecard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backlogPath, _ := cmd.Flags().GetString("backlog")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		backlog, err := crosswalk.LoadBacklog(backlogPath)
		if err != nil {
			return err
		}
		index, err := benchmark.LoadIndex(viper.GetString("sscf-index"))
		if err != nil {
			return err
		}

		report := benchmark.Run(backlog, index, threshold, time.Time{})

		switch format {
		case "json":
			data, err := marshalIndent(report)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
		case "markdown":
			fmt.Print(report.Markdown())
		case "":
			printScorecard(report)
		default:
			return fmt.Errorf("unknown format %q (want json or markdown)", format)
		}

		if outPath != "" {
			if err := writeJSONFile(outPath, report); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", outPath)
		}
		return nil
	},
}

func printScorecard(report *benchmark.Report) {
	fmt.Printf("SSCF Benchmark %s (threshold %.2f)\n\n", report.BenchmarkID, report.Threshold)
	for _, d := range report.Domains {
		line := fmt.Sprintf("  %-28s %6.2f%%  %s", d.Domain, d.Score*100, d.Status)
		switch d.Status {
		case "green":
			color.Green(line)
		case "amber":
			color.Yellow(line)
		default:
			color.Red(line)
		}
	}
	fmt.Printf("\nOverall: %.2f%% (%s), %d unmatched finding(s)\n",
		report.OverallScore*100, report.OverallStatus, report.Summary.UnmatchedFindings)
}

func init() {
	benchmarkCmd.Flags().String("backlog", "", "Path to backlog.json produced by map")
	benchmarkCmd.Flags().Float64("threshold", benchmark.DefaultThreshold, "Green banding threshold")
	benchmarkCmd.Flags().String("format", "", "Print the full report as json or markdown instead of the scorecard")
	benchmarkCmd.Flags().String("out", "", "Also write the report JSON to this path")
	_ = benchmarkCmd.MarkFlagRequired("backlog")
	rootCmd.AddCommand(benchmarkCmd)
}
