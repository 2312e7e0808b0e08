package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"voice-coach-go/internal/dataset"
	"voice-coach-go/internal/scenario"
)

const previewLen = 80

func newScenariosCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "scenarios [FILE]",
		Short: "List the training scenarios built from a transcript workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.DatasetPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no workbook given and DATASET_PATH is not set")
			}
			sum, err := dataset.Summarize(path, a.log.Entry)
			if err != nil {
				return err
			}
			list, err := dataset.LoadScenarios(path, a.log.Entry)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Summary   dataset.Summary     `json:"summary"`
					Scenarios []scenario.Scenario `json:"scenarios"`
				}{sum, list})
			}

			fmt.Fprintf(out, "%d scenarios from %d rows\n", sum.Scenarios, sum.TotalRows)
			for _, tc := range sum.ByType {
				fmt.Fprintf(out, "  %-24s %d\n", tc.Type, tc.Count)
			}
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE ID\tTYPE\tCONTEXT")
			for _, sc := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", sc.SourceID, sc.Type, preview(sc.Context))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print summary and scenarios as JSON")
	return cmd
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
