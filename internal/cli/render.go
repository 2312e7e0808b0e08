package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"voice-coach-go/internal/aggregator"
	"voice-coach-go/internal/evaluation"
)

var statusMark = map[aggregator.Status]string{
	aggregator.StatusComplete: "OK",
	aggregator.StatusPartial:  "PARTIAL",
	aggregator.StatusMissing:  "MISSING",
}

func printReport(w io.Writer, r evaluation.Report) {
	sum := aggregator.Aggregate(r)
	fmt.Fprintln(w, sum.Headline())
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tITEM\tDESCRIPTION\tSCORE\tEVIDENCE")
	for _, row := range sum.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", statusMark[row.Status], row.ID, row.Description, row.Score, row.Evidence)
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Suggestions:")
	for _, tip := range r.Tips {
		fmt.Fprintf(w, "  - %s\n", tip)
	}
}
