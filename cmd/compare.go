package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	compareEncoded   bool
	compareThreshold float64
	compareMaxOffset int
)

var compareCmd = &cobra.Command{
	Use:   "compare <reference> <candidate>",
	Short: "Compare two fingerprints",
	Long: `Fingerprint two inputs and report their bit error rate, best alignment
offset and SimHash distance. The pair matches when the bit error rate is
below compare.match_threshold.

Examples:
  # Compare a master against an encode
  chromaprint compare master.wav encode.mp3

  # Compare two stored base64 fingerprints
  chromaprint compare --encoded AQAAE0mUaEkSRZEG... AQAAE0mUaEkSRZEG...`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().BoolVarP(&compareEncoded, "encoded", "e", false,
		"arguments are base64 fingerprints instead of inputs")
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", 0,
		"maximum bit error rate reported as a match (default from config)")
	compareCmd.Flags().IntVar(&compareMaxOffset, "max-offset", 0,
		"largest alignment shift in subfingerprints (default from config)")

	viper.BindPFlag("compare.match_threshold", compareCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("compare.max_offset", compareCmd.Flags().Lookup("max-offset"))
}

func runCompare(cmd *cobra.Command, args []string) error {
	application, err := newApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if compareEncoded {
		return application.CompareEncoded(args[0], args[1])
	}
	return application.Compare(cmd.Context(), args[0], args[1])
}
