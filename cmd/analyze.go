package cmd

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/stft-explainer/algorithms/spectral"
	"github.com/RyanBlaney/stft-explainer/explainer"
)

var analyzeMatrix bool

type analysisResult struct {
	Source             string                    `json:"source" yaml:"source"`
	SampleRate         float64                   `json:"sample_rate" yaml:"sample_rate"`
	Samples            int                       `json:"samples" yaml:"samples"`
	ChunkSize          int                       `json:"chunk_size" yaml:"chunk_size"`
	Frames             int                       `json:"frames" yaml:"frames"`
	Bands              int                       `json:"bands" yaml:"bands"`
	TrimmedBands       int                       `json:"trimmed_bands" yaml:"trimmed_bands"`
	HighestFrequencyHz float64                   `json:"highest_frequency_hz" yaml:"highest_frequency_hz"`
	PeakDecibels       float64                   `json:"peak_db" yaml:"peak_db"`
	CentroidHz         float64                   `json:"centroid_hz" yaml:"centroid_hz"`
	Labels             []spectral.FrequencyLabel `json:"labels" yaml:"labels"`
	Decibels           [][]float64               `json:"decibels,omitempty" yaml:"decibels,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [sample|file]",
	Short: "Compute spectrogram data for a recording",
	Long: `Split the recording into non-overlapping windowed chunks, transform each one
and convert the magnitudes to decibels for display. Trailing silent bands are
trimmed from every frame.

Examples:
  stft-explainer analyze lickChords
  stft-explainer analyze --matrix -o json recording.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		session, err := openSession(cmd.Context(), cfg, inputArg(args))
		if err != nil {
			return err
		}

		result := buildAnalysisResult(session, cfg.Display.LabelSpacingHz)
		if analyzeMatrix {
			result.Decibels = session.OriginalDisplay().Decibels
		}

		return render(cmd.OutOrStdout(), cfg.OutputFormat, result, func(tw *tabwriter.Writer) {
			printKeyValue(tw, "Source", result.Source)
			printKeyValue(tw, "Sample rate", fmt.Sprintf("%.0f Hz", result.SampleRate))
			printKeyValue(tw, "Samples", result.Samples)
			printKeyValue(tw, "Chunk size", result.ChunkSize)
			printKeyValue(tw, "Frames", result.Frames)
			printKeyValue(tw, "Bands", fmt.Sprintf("%d (%d displayed)", result.Bands, result.TrimmedBands))
			printKeyValue(tw, "Highest frequency", fmt.Sprintf("%.1f Hz", result.HighestFrequencyHz))
			printKeyValue(tw, "Peak level", fmt.Sprintf("%.1f dB", result.PeakDecibels))
			printKeyValue(tw, "Spectral centroid", fmt.Sprintf("%.1f Hz", result.CentroidHz))
			tw.Flush()

			printSection(tw, "Frequency axis")
			fmt.Fprintln(tw, "HZ\tBAND\tPOSITION")
			for _, label := range result.Labels {
				fmt.Fprintf(tw, "%d\t%d\t%.3f\n", label.Hz, label.Band, label.Position)
			}
		})
	},
}

func buildAnalysisResult(session *explainer.Session, labelSpacingHz int) analysisResult {
	display := session.OriginalDisplay()

	peak := math.Inf(-1)
	for _, row := range display.Decibels {
		for _, db := range row {
			peak = math.Max(peak, db)
		}
	}
	if math.IsInf(peak, -1) {
		peak = 0
	}

	centroid, _ := session.Centroids()

	return analysisResult{
		Source:             session.Source(),
		SampleRate:         display.SampleRate,
		Samples:            len(session.Signal()),
		ChunkSize:          session.ChunkSize(),
		Frames:             display.Frames,
		Bands:              display.Bands,
		TrimmedBands:       display.TrimmedBands,
		HighestFrequencyHz: display.HighestFrequency(),
		PeakDecibels:       peak,
		CentroidHz:         centroid,
		Labels:             display.FrequencyLabels(labelSpacingHz),
	}
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeMatrix, "matrix", false,
		"include the full decibel matrix (json and yaml output)")
	rootCmd.AddCommand(analyzeCmd)
}
