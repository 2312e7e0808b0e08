package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"voice-coach-go/internal/dataset"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/session"
)

type chatOptions struct {
	seed       uint64
	scenarioID string
	dataset    string
	exportPath string
	xlsxPath   string
}

func newChatCmd(a *app) *cobra.Command {
	var opts chatOptions
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Play the agent in an interactive training call",
		Long: `Type what you would say to the customer, one utterance per line.
Commands: /report shows the current score, /done ends the call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), a, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible replies (0 uses RANDOM_SEED or the clock)")
	cmd.Flags().StringVar(&opts.scenarioID, "scenario", "", "source id of the scenario to play")
	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "transcript workbook to build scenarios from (defaults to DATASET_PATH)")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "write the session snapshot as JSON to this file at the end")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "write the score sheet to this xlsx file at the end")
	return cmd
}

func runChat(ctx context.Context, a *app, opts chatOptions, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	library, err := a.scenarios(opts.dataset)
	if err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		seed = a.cfg.Seed()
	}
	sc := scenario.Pick(library, rand.New(rand.NewPCG(seed, seed)))
	if opts.scenarioID != "" {
		found, ok := scenario.Find(library, opts.scenarioID)
		if !ok {
			return fmt.Errorf("scenario %q not found", opts.scenarioID)
		}
		sc = found
	}

	sopts := []session.Option{
		session.WithSeed(seed),
		session.WithScenario(sc),
		session.WithLimit(a.cfg.SessionLimit),
		session.WithAPIStatus(a.cfg.APIStatus()),
		session.WithLogger(a.log.Entry),
	}
	if gen := a.generator(); gen != nil {
		sopts = append(sopts, session.WithGenerator(gen))
	}
	sess := session.New(sopts...)

	fmt.Fprintf(out, "Scenario: %s\nPersona: %s\n\n", sc.Type, scenario.Persona(sc))
	opening, err := sess.Start()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "customer> %s\n", opening.Text)

	scanner := bufio.NewScanner(in)
loop:
	for {
		fmt.Fprint(out, "agent> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		switch line := strings.TrimSpace(scanner.Text()); line {
		case "":
		case "/report":
			printReport(out, sess.Report())
		case "/done", "/end", "/quit":
			break loop
		default:
			res, err := sess.Turn(ctx, line)
			if errors.Is(err, session.ErrSessionExpired) {
				fmt.Fprintln(out, "Time is up, the call is over.")
				break loop
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "customer> %s\n", res.Customer.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	sess.End()
	fmt.Fprintln(out)
	printReport(out, sess.Report())
	return writeExports(sess.Snapshot(), opts, out)
}

func writeExports(snap session.Snapshot, opts chatOptions, out io.Writer) error {
	if opts.exportPath != "" {
		f, err := os.Create(opts.exportPath)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		if err := snap.Export(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close export: %w", err)
		}
		fmt.Fprintf(out, "\nSession saved to %s\n", opts.exportPath)
	}
	if opts.xlsxPath != "" {
		if err := dataset.WriteScoreSheet(opts.xlsxPath, snap); err != nil {
			return err
		}
		fmt.Fprintf(out, "Score sheet saved to %s\n", opts.xlsxPath)
	}
	return nil
}
