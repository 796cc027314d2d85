package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/chromaprint/internal/app"
)

var (
	batchJobFile       string
	batchMaxConcurrent int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a batch fingerprint job",
	Long: `Fingerprint every input listed in a YAML or JSON job file concurrently,
optionally comparing each one against a reference input.

Examples:
  # Write an example job and run it
  chromaprint config generate-job job.yaml
  chromaprint batch --job job.yaml -o json -f results.json`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchJobFile, "job", "j", "",
		"batch job file (YAML or JSON)")
	batchCmd.Flags().IntVar(&batchMaxConcurrent, "max-concurrent", 0,
		"inputs processed at once (default from config)")
	batchCmd.MarkFlagRequired("job")

	viper.BindPFlag("stream.max_concurrent", batchCmd.Flags().Lookup("max-concurrent"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	application, err := app.NewApp(&app.Context{
		JobFile:      batchJobFile,
		OutputFile:   outputFile,
		OutputFormat: outputFormat,
		Algorithm:    algorithm,
		Verbose:      verbose,
		Quiet:        quiet,
		Stdout:       cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	return application.RunBatch(cmd.Context())
}
