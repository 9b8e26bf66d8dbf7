package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/stft-explainer/algorithms/common"
	"github.com/RyanBlaney/stft-explainer/algorithms/editing"
	"github.com/RyanBlaney/stft-explainer/transcode"
)

var (
	editLowerHz float64
	editUpperHz float64
	editOut     string
)

type editResult struct {
	Source       string            `json:"source" yaml:"source"`
	LowerHz      float64           `json:"lower_hz" yaml:"lower_hz"`
	UpperHz      float64           `json:"upper_hz" yaml:"upper_hz"`
	LowerBand    int               `json:"lower_band" yaml:"lower_band"`
	UpperBand    int               `json:"upper_band" yaml:"upper_band"`
	Frames       int               `json:"frames" yaml:"frames"`
	TrimmedBands int               `json:"trimmed_bands" yaml:"trimmed_bands"`
	CentroidHz   [2]float64        `json:"centroid_hz" yaml:"centroid_hz"`
	Difference   common.ErrorStats `json:"difference" yaml:"difference"`
	Written      string            `json:"written,omitempty" yaml:"written,omitempty"`
}

var editCmd = &cobra.Command{
	Use:   "edit [sample|file]",
	Short: "Silence a frequency band and rebuild the recording",
	Long: `Zero every band between --lower and --upper (Hz) in the overlapped spectra,
rebuild the signal with overlap-add and analyze the result again.
Without flags, editing.guidelines from the config file is used.

Examples:
  stft-explainer edit lickChords --lower 200 --upper 800 --out thin.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		lowerHz, upperHz := editLowerHz, editUpperHz
		if !cmd.Flags().Changed("lower") && !cmd.Flags().Changed("upper") {
			l, u, ok := cfg.Guidelines()
			if !ok {
				return fmt.Errorf("no band given: use --lower/--upper or set editing.guidelines")
			}
			lowerHz, upperHz = l, u
		}

		session, err := openSession(cmd.Context(), cfg, inputArg(args))
		if err != nil {
			return err
		}

		if err := session.ApplyGuidelines(lowerHz, upperHz); err != nil {
			var rangeErr *editing.RangeError
			if errors.As(err, &rangeErr) {
				return fmt.Errorf("%s (bands %d to %d of %d)", session.LastError(), rangeErr.Lower, rangeErr.Upper, rangeErr.NumBands)
			}
			return err
		}

		sampleRate := session.SampleRate()
		display, _ := session.ModifiedDisplay()
		modified := session.Modified()
		signal := session.Signal()
		before, after := session.Centroids()

		result := editResult{
			Source:       session.Source(),
			LowerHz:      lowerHz,
			UpperHz:      upperHz,
			LowerBand:    editing.BandForFrequency(lowerHz, sampleRate, session.NumBands()),
			UpperBand:    editing.BandForFrequency(upperHz, sampleRate, session.NumBands()),
			Frames:       display.Frames,
			TrimmedBands: display.TrimmedBands,
			CentroidHz:   [2]float64{before, after},
			Difference:   common.CompareSignals(signal, modified, session.ChunkSize(), len(signal)),
		}

		if editOut != "" {
			if err := transcode.EncodeWAVFile(editOut, modified, int(sampleRate)); err != nil {
				return err
			}
			result.Written = editOut
		}

		return render(cmd.OutOrStdout(), cfg.OutputFormat, result, func(tw *tabwriter.Writer) {
			printKeyValue(tw, "Source", result.Source)
			printKeyValue(tw, "Silenced", fmt.Sprintf("%.1f Hz to %.1f Hz (bands %d to %d)",
				result.LowerHz, result.UpperHz, result.LowerBand, result.UpperBand))
			printKeyValue(tw, "Frames", result.Frames)
			printKeyValue(tw, "Displayed bands", result.TrimmedBands)
			printKeyValue(tw, "Spectral centroid", fmt.Sprintf("%.1f Hz -> %.1f Hz", result.CentroidHz[0], result.CentroidHz[1]))
			printKeyValue(tw, "Removed RMS", fmt.Sprintf("%.6f", result.Difference.RMS))
			if result.Written != "" {
				printKeyValue(tw, "Written", result.Written)
			}
		})
	},
}

func init() {
	editCmd.Flags().Float64Var(&editLowerHz, "lower", 0, "lowest silenced frequency in Hz")
	editCmd.Flags().Float64Var(&editUpperHz, "upper", 0, "highest silenced frequency in Hz")
	editCmd.Flags().StringVar(&editOut, "out", "", "write the edited signal to this WAV file")
	rootCmd.AddCommand(editCmd)
}
