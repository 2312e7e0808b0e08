package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"voice-coach-go/internal/checklist"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/evaluation"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/session"
	"voice-coach-go/internal/transcript"
)

func newReplayCmd(_ *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Score a saved session or transcript from scratch",
		Long:  "FILE is a session export or a JSON array of turns ({speaker, text, timestamp}). Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			rep, err := replay(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(out, rep)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// replay accepts a session snapshot or a bare list of turns.
func replay(data []byte) (evaluation.Report, error) {
	sc := scenario.Default()
	var turns []transcript.Turn

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &turns); err != nil {
			return evaluation.Report{}, fmt.Errorf("decode turns: %w", err)
		}
	} else {
		snap, err := session.ReadSnapshot(bytes.NewReader(data))
		if err != nil {
			return evaluation.Report{}, err
		}
		sc, turns = snap.Scenario, snap.Turns
	}

	// validates speakers and keeps timestamps monotonic
	t, err := transcript.FromTurns(turns)
	if err != nil {
		return evaluation.Report{}, err
	}
	return session.Evaluate(checklist.Default(), t.Turns(), scenario.ForScenario(sc), customer.DefaultTuning()), nil
}
