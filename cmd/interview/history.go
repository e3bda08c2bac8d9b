package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/interview/observability"
	"github.com/tailored-agentic-units/interview/relay"
	"github.com/tailored-agentic-units/interview/session"
)

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history <session-key>",
		Short: "Print a session's stored transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := session.Split(args[0])
			if err != nil {
				return err
			}

			cfg, err := opts.config()
			if err != nil {
				return err
			}
			client, err := relay.New(&cfg.Relay, relay.WithObserver(observability.NewSlogObserver(nil)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			h, err := client.FetchHistory(cmd.Context(), key)
			if errors.Is(err, session.ErrHistoryNotFound) {
				fmt.Fprintln(out, noticeStyle.Render("No history for "+key.String()))
				return nil
			}
			if err != nil {
				return err
			}

			renderHeader(out, key, h.Status, h.MessageCount)
			for _, m := range h.Messages {
				renderMessage(out, m)
			}
			return nil
		},
	}
}
