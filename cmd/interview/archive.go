package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/interview/memory"
)

func newArchiveCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse transcripts archived by completed sessions",
	}

	open := func() (*memory.Archive, memory.Store, error) {
		cfg, err := opts.config()
		if err != nil {
			return nil, nil, err
		}
		store, err := memory.NewStore(&cfg.Memory)
		if err != nil {
			return nil, nil, err
		}
		if store == nil {
			return nil, nil, errors.New("no archive configured: set --archive or memory.path")
		}
		return memory.NewArchive(store), store, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [account]",
			Short: "List archived transcripts",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				archive, store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()

				account := ""
				if len(args) == 1 {
					account = args[0]
				}
				contacts, err := archive.Contacts(cmd.Context(), account)
				if err != nil {
					return err
				}
				for _, c := range contacts {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <account> <contact>",
			Short: "Print one archived transcript",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				archive, store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()

				t, err := archive.Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(t.Document)
				return err
			},
		},
	)
	return cmd
}
