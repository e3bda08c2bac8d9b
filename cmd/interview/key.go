package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/interview/session"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Compose and split session keys",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "compose <account> <contact>",
			Short: "Join an account ID and contact identity into a session key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := session.Compose(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "split <session-key>",
			Short: "Split a session key into account ID and contact identity",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := session.Split(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "account: %s\ncontact: %s\n", key.AccountID, key.ContactIdentity)
				return nil
			},
		},
	)
	return cmd
}
