package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/internal/app"
)

const envPrefix = "CHROMAPRINT"

var (
	configFile   string
	verbose      bool
	quiet        bool
	logLevel     string
	outputFormat string
	outputFile   string
	algorithm    string
	configDir    string
	dataDir      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chromaprint",
	Short: "Chromaprint compatible acoustic fingerprinting",
	Long: `Compute, encode, decode and compare Chromaprint compatible acoustic
fingerprints for local audio files and live HLS or Icecast streams.

Key features:
- Algorithms FP1 through FP4 with the standard trained classifiers
- Compressed base64 fingerprints interchangeable with other Chromaprint tools
- Bit error rate comparison with offset alignment
- Concurrent batch jobs described in YAML or JSON`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"config directory (default is $HOME/.config/chromaprint)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/chromaprint/chromaprint.yaml)")

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default is $HOME/.local/share/chromaprint)")

	// Output and logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"only log errors")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"output format ("+strings.Join(configs.OutputFormats, ", ")+")")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output-file", "f", "",
		"write results to a file instead of stdout")
	rootCmd.PersistentFlags().StringVarP(&algorithm, "algorithm", "a", "",
		"fingerprint algorithm (fp1, fp2, fp3, fp4)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	// A missing .env is fine
	_ = godotenv.Load()

	if configFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory and /etc
		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config", configs.AppName))
		viper.AddConfigPath("/etc/" + configs.AppName)
		viper.AddConfigPath("./configs")
		viper.SetConfigName(configs.AppName)
		viper.SetConfigType("yaml")
	}

	// Environment variable support
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper())
}

// bindFlags binds each command flag to its environment variable, and fills
// flags the user left unset from env
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		key := "flags." + f.Name

		if err := v.BindEnv(key, envPrefix+"_"+envVarSuffix); err != nil {
			lastErr = err
			return
		}

		if !f.Changed && v.IsSet(key) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(key))); err != nil {
				lastErr = err
			}
		}
	})

	return lastErr
}

// newApp builds the application from the global flags
func newApp(cmd *cobra.Command) (*app.App, error) {
	return app.NewApp(&app.Context{
		OutputFile:   outputFile,
		OutputFormat: outputFormat,
		Algorithm:    algorithm,
		Verbose:      verbose,
		Quiet:        quiet,
		Stdout:       cmd.OutOrStdout(),
	})
}
