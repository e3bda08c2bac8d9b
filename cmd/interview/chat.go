package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/interview/account"
	"github.com/tailored-agentic-units/interview/chat"
	"github.com/tailored-agentic-units/interview/core/protocol"
	"github.com/tailored-agentic-units/interview/observability"
	"github.com/tailored-agentic-units/interview/session"
)

func newChatCmd(opts *options) *cobra.Command {
	var newAccount string

	cmd := &cobra.Command{
		Use:   "chat [session-key]",
		Short: "Open an interactive session",
		Long: `Open a session and read messages from stdin, one per line.

Replies stream in as they arrive. Type /complete to complete the session
once it is eligible, or /quit to leave.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := chatKey(args, newAccount)
			if err != nil {
				return err
			}

			cfg, err := opts.config()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printer := &streamPrinter{w: out}
			rec := &observability.Recorder{}

			o, err := chat.New(cfg, key,
				chat.WithListener(printer.update),
				chat.WithObserver(observability.NewMultiObserver(observability.NewSlogObserver(nil), rec)),
			)
			if err != nil {
				return err
			}
			defer o.Close()
			defer summarize(cmd.ErrOrStderr(), rec)

			ctx := cmd.Context()
			if err := o.Load(ctx); err != nil {
				return err
			}

			sess := o.Session()
			renderHeader(out, key, sess.Status(), sess.MessageCount())
			for _, m := range sess.Messages() {
				renderMessage(out, m)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, userStyle.Render("> "))
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())

				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/complete":
					if _, err := o.Complete(ctx); err != nil {
						fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
						continue
					}
					fmt.Fprintln(out, noticeStyle.Render("Session completed."))
					continue
				}

				printer.arm()
				res, err := o.Send(ctx, line)
				printer.disarm()

				switch {
				case errors.Is(err, account.ErrNoAgent):
					return fmt.Errorf("%w: configure an agent for account %s first", err, key.AccountID)
				case err != nil:
					fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
				case res.MessageCount == protocol.CompletionThreshold && !sess.Status().IsFinished():
					fmt.Fprintln(out, noticeStyle.Render("This session can now be completed with /complete."))
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&newAccount, "new", "", "Start a fresh agent chat for this account")
	return cmd
}

func chatKey(args []string, newAccount string) (session.Key, error) {
	switch {
	case newAccount != "" && len(args) > 0:
		return session.Key{}, errors.New("pass either a session key or --new, not both")
	case newAccount != "":
		return session.NewChatKey(newAccount)
	case len(args) == 1:
		return session.Split(args[0])
	default:
		return session.Key{}, errors.New("a session key or --new <account> is required")
	}
}

// summarize prints how many sends succeeded and failed during the run.
func summarize(w io.Writer, rec *observability.Recorder) {
	var sent, failed int
	for _, typ := range rec.Types() {
		switch typ {
		case chat.EventSendComplete:
			sent++
		case chat.EventSendFailed:
			failed++
		}
	}
	if sent+failed > 0 {
		fmt.Fprintln(w, stampStyle.Render(fmt.Sprintf("%d sent, %d failed", sent, failed)))
	}
}
