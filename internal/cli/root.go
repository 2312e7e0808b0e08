package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var cfgFile string
	a := &app{}

	cmd := &cobra.Command{
		Use:           "coach",
		Short:         "Call-centre trainer: role-play a windshield service call and get scored",
		Long:          "coach simulates an insurance customer calling a windshield repair service, scores every agent utterance against the 81 point quality checklist and suggests improvements.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cfgFile)
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables take precedence")

	cmd.AddCommand(
		newChatCmd(a),
		newReplayCmd(a),
		newScenariosCmd(a),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
