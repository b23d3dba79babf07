package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "posture-adk",
	Short: "Agent-driven Salesforce compliance posture pipeline",
	Long: `posture-adk assesses a Salesforce org against the SBS control catalog,
maps the findings onto the CSA SSCF crosswalk, and scores the result per
SSCF domain. The stages run standalone (assess, map, benchmark) or as an
agent-orchestrated pipeline (run).`,
}

var DebugMode bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("controls", "config/sbs_controls.json", "Path to the SBS controls catalog JSON")
	rootCmd.PersistentFlags().String("mapping", "config/control_mapping.yaml", "Path to the legacy control crosswalk YAML")
	rootCmd.PersistentFlags().String("sscf-map", "config/sbs_to_sscf_mapping.yaml", "Path to the SBS-to-SSCF crosswalk YAML")
	rootCmd.PersistentFlags().String("sscf-index", "config/sscf_control_index.yaml", "Path to the SSCF control index YAML")
	rootCmd.PersistentFlags().String("out-dir", "docs", "Artifact root; outputs land under <out-dir>/generated/<org>/<date>")

	// Every persistent flag is also settable via POSTURE_<NAME>.
	viper.SetEnvPrefix("POSTURE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"controls", "mapping", "sscf-map", "sscf-index", "out-dir"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}
