package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <fingerprint>",
	Short: "Decode a base64 fingerprint to raw subfingerprints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return application.Decode(args[0])
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <subfingerprint...>",
	Short: "Encode raw subfingerprints as a base64 fingerprint",
	Long: `Compress raw 32-bit subfingerprints, given as decimal or 0x-prefixed hex,
into the base64 form. The algorithm id in the header comes from --algorithm.

Examples:
  chromaprint encode -a fp2 3920356354 3920356866 0xe9a5c1c2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return application.Encode(args)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
}
