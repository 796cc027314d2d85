package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fingerprintMaxDuration      time.Duration
	fingerprintSilenceThreshold int
	fingerprintFFTBackend       string
	fingerprintRaw              bool
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [inputs...]",
	Short: "Fingerprint audio files or streams",
	Long: `Decode each input and compute its acoustic fingerprint.

Inputs may be local files (any format the decoder understands) or HTTP(S)
HLS and Icecast stream URLs. Streams are captured for stream.segment_duration.

Examples:
  # Fingerprint a file with the default algorithm
  chromaprint fingerprint track.mp3

  # Use FP4 with silence removal and print raw values as JSON
  chromaprint fingerprint -a fp4 --raw -o json track.flac

  # Fingerprint a live stream
  chromaprint fingerprint https://cdn.example.com/live/playlist.m3u8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFingerprint,
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().DurationVarP(&fingerprintMaxDuration, "length", "l", 0,
		"maximum audio duration to fingerprint (default from config)")
	fingerprintCmd.Flags().IntVar(&fingerprintSilenceThreshold, "silence-threshold", 0,
		"silence removal threshold for algorithms that remove silence")
	fingerprintCmd.Flags().StringVar(&fingerprintFFTBackend, "fft", "",
		"FFT backend (dsp, gonum)")
	fingerprintCmd.Flags().BoolVar(&fingerprintRaw, "raw", false,
		"include raw subfingerprints in the output")

	viper.BindPFlag("fingerprint.max_duration", fingerprintCmd.Flags().Lookup("length"))
	viper.BindPFlag("fingerprint.silence_threshold", fingerprintCmd.Flags().Lookup("silence-threshold"))
	viper.BindPFlag("fingerprint.fft_backend", fingerprintCmd.Flags().Lookup("fft"))
	viper.BindPFlag("output.raw", fingerprintCmd.Flags().Lookup("raw"))
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	application, err := newApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	return application.Fingerprint(cmd.Context(), args)
}
