package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate, validate and display configuration",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Write an example application config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.GenerateExampleConfig(args[0], cmd.OutOrStdout())
	},
}

var configGenerateJobCmd = &cobra.Command{
	Use:   "generate-job <file>",
	Short: "Write an example batch job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.GenerateExampleJob(args[0], cmd.OutOrStdout())
	},
}

var validateJob bool

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate an application config or, with --job, a batch job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateJob {
			return app.ValidateJobFile(args[0], cmd.OutOrStdout())
		}
		return app.ValidateConfigFile(args[0], cmd.OutOrStdout())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Load configuration from files, environment and flags and print every
value, to verify what the other commands will run with.

Examples:
  chromaprint config show
  CHROMAPRINT_FINGERPRINT_ALGORITHM=fp4 chromaprint config show`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGenerateCmd, configGenerateJobCmd, configValidateCmd, configShowCmd)

	configValidateCmd.Flags().BoolVar(&validateJob, "job", false, "validate a batch job file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfigFrom(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "CHROMAPRINT CONFIGURATION")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	if used := viper.ConfigFileUsed(); used != "" {
		printKeyValue(w, "Config File", used)
	}

	printSection(w, "APPLICATION")
	printKeyValue(w, "Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue(w, "Log Level", config.LogLevel)
	printKeyValue(w, "Output Format", config.OutputFormat)
	printKeyValue(w, "Config Directory", config.ConfigDir)
	printKeyValue(w, "Data Directory", config.DataDir)

	printSection(w, "FINGERPRINT")
	printKeyValue(w, "Algorithm", config.Fingerprint.Algorithm)
	printKeyValue(w, "Silence Threshold", fmt.Sprintf("%d", config.Fingerprint.SilenceThreshold))
	printKeyValue(w, "FFT Backend", config.Fingerprint.FFTBackend)
	printKeyValue(w, "Buffer Size", fmt.Sprintf("%d samples", config.Fingerprint.BufferSize))
	printKeyValue(w, "Max Duration", config.Fingerprint.MaxDuration.String())
	printKeyValue(w, "Content Type", config.Fingerprint.ContentType)

	printSection(w, "STREAM")
	printKeyValue(w, "Timeout", config.Stream.Timeout.String())
	printKeyValue(w, "Overall Timeout", config.Stream.OverallTimeout.String())
	printKeyValue(w, "Segment Duration", config.Stream.SegmentDuration.String())
	printKeyValue(w, "Max Concurrent", fmt.Sprintf("%d", config.Stream.MaxConcurrent))

	printSection(w, "COMPARE")
	printKeyValue(w, "Match Threshold", fmt.Sprintf("%.3f", config.Compare.MatchThreshold))
	printKeyValue(w, "Max Offset", fmt.Sprintf("%d subfingerprints", config.Compare.MaxOffset))

	printSection(w, "OUTPUT")
	printKeyValue(w, "Precision", fmt.Sprintf("%d", config.Output.Precision))
	printKeyValue(w, "Include Metadata", fmt.Sprintf("%t", config.Output.IncludeMetadata))
	printKeyValue(w, "Timestamps", fmt.Sprintf("%t", config.Output.Timestamps))
	printKeyValue(w, "Raw", fmt.Sprintf("%t", config.Output.Raw))
	printKeyValue(w, "Base64", fmt.Sprintf("%t", config.Output.Base64))

	printSection(w, "METRICS")
	printKeyValue(w, "Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue(w, "Log File", config.Metrics.LogFile)
	if len(config.Metrics.Tags) > 0 {
		printSubsection(w, fmt.Sprintf("Tags (%d)", len(config.Metrics.Tags)))
		for _, key := range slices.Sorted(maps.Keys(config.Metrics.Tags)) {
			printKeyValue(w, "  "+key, config.Metrics.Tags[key])
		}
	}

	if err := configs.ValidateConfig(config); err != nil {
		fmt.Fprintf(w, "\nValidation failed:\n%v\n", err)
		return err
	}
	fmt.Fprintln(w, "\nConfiguration is valid")
	return nil
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func printSubsection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n  %s\n", title)
}

func printKeyValue(w io.Writer, key, value string) {
	if value == "" {
		fmt.Fprintf(w, "%-30s\n", key)
	} else {
		fmt.Fprintf(w, "%-30s %s\n", key+":", value)
	}
}
