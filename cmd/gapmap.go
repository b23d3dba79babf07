package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/posture-adk/pkg/crosswalk"
	"github.com/user/posture-adk/pkg/engine"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map gap-analysis findings onto the SSCF crosswalk",
	Long: `Routes every finding from gap_analysis.json into exactly one of three
buckets (mapped, unmapped, invalid) and writes the remediation backlog JSON
plus a human-readable gap matrix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gapPath, _ := cmd.Flags().GetString("gap-analysis")
		outMD, _ := cmd.Flags().GetString("out-md")
		outJSON, _ := cmd.Flags().GetString("out-json")

		gap, err := crosswalk.LoadGapAnalysis(gapPath)
		if err != nil {
			return err
		}
		catalog, err := engine.LoadCatalog(viper.GetString("controls"))
		if err != nil {
			return err
		}
		legacy, err := crosswalk.LoadLegacyCrosswalk(viper.GetString("mapping"))
		if err != nil {
			return err
		}
		sscf, err := crosswalk.LoadSSCFCrosswalk(viper.GetString("sscf-map"))
		if err != nil {
			return err
		}

		backlog := crosswalk.Map(gap, crosswalk.MapInput{
			CatalogByID:    catalog.ByID(),
			CatalogVersion: catalog.Meta.Version,
			Legacy:         legacy.ByLegacyID(),
			SSCF:           sscf,
		})

		if err := writeJSONFile(outJSON, backlog); err != nil {
			return err
		}
		if err := os.WriteFile(outMD, []byte(backlog.Matrix()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outMD, err)
		}

		fmt.Printf("Mapped %d findings (%d unmapped, %d invalid entries)\n",
			len(backlog.MappedItems), len(backlog.UnmappedItems), len(backlog.InvalidMappingEntries))
		fmt.Printf("Wrote %s and %s\n", outJSON, outMD)
		return nil
	},
}

func marshalIndent(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func init() {
	mapCmd.Flags().String("gap-analysis", "", "Path to gap_analysis.json produced by assess")
	mapCmd.Flags().String("out-md", "matrix.md", "Output path for the gap matrix markdown")
	mapCmd.Flags().String("out-json", "backlog.json", "Output path for the backlog JSON")
	_ = mapCmd.MarkFlagRequired("gap-analysis")
	rootCmd.AddCommand(mapCmd)
}
