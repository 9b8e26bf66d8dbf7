package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/stft-explainer/explainer"
)

type sampleInfo struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Path        string `json:"path" yaml:"path"`
	Available   bool   `json:"available" yaml:"available"`
}

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the bundled sample recordings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		infos := listSamples(cfg.SamplesDir)
		return render(cmd.OutOrStdout(), cfg.OutputFormat, infos, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tPATH\tAVAILABLE")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", info.Name, info.DisplayName, info.Path, info.Available)
			}
		})
	},
}

func listSamples(dir string) []sampleInfo {
	samples := explainer.AllSampleFiles()
	infos := make([]sampleInfo, 0, len(samples))
	for _, f := range samples {
		path := f.Path(dir)
		_, err := os.Stat(path)
		infos = append(infos, sampleInfo{
			Name:        f.String(),
			DisplayName: f.DisplayName(),
			Path:        path,
			Available:   err == nil,
		})
	}
	return infos
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}
