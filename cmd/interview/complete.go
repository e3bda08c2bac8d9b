package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/interview/chat"
	"github.com/tailored-agentic-units/interview/session"
)

func newCompleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <session-key>",
		Short: "Complete an eligible interview",
		Long: `Load a session and complete it. The session must be active and have at
least five exchanges. Document processing and knowledge-base training run
afterwards on a best-effort basis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := session.Split(args[0])
			if err != nil {
				return err
			}

			cfg, err := opts.config()
			if err != nil {
				return err
			}
			o, err := chat.New(cfg, key)
			if err != nil {
				return err
			}
			defer o.Close()

			ctx := cmd.Context()
			if err := o.Load(ctx); err != nil {
				return err
			}
			if _, err := o.Complete(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), noticeStyle.Render("Completed "+key.String()))
			return nil
		},
	}
}
