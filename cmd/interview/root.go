package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/interview/chat"
	"github.com/tailored-agentic-units/interview/relay"
)

var version = "dev"

// options holds the persistent flags shared by every subcommand.
type options struct {
	configFile string
	apiURL     string
	mode       string
	archive    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "interview",
		Short: "Chat with and interview through relayed AI agents",
		Long: `Run agent chats and contact interviews through the dashboard relay.

Sessions are identified by a key of the form <account>+<contact>. Chat
replies stream into the terminal as they arrive; once an interview has
five exchanges it can be completed, which hands it off for document
processing and knowledge-base training.

Quick Start:
  interview chat --new acct                 # fresh agent chat
  interview chat acct+jane@example.com      # resume a session
  interview complete acct+jane@example.com  # finish an interview`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to config file (.yaml, .yml or .json)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Relay base URL (overrides config and $"+relay.EnvBaseURL+")")
	root.PersistentFlags().StringVarP(&opts.mode, "mode", "m", "", "Send mode: agent or interview (overrides config)")
	root.PersistentFlags().StringVar(&opts.archive, "archive", "", "Transcript archive path (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging to stderr")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newChatCmd(opts),
		newHistoryCmd(opts),
		newCompleteCmd(opts),
		newKeyCmd(),
		newArchiveCmd(opts),
	)
	return root
}

// config loads the config file, if any, and applies flag overrides.
func (o *options) config() (*chat.Config, error) {
	var cfg *chat.Config
	if o.configFile != "" {
		loaded, err := chat.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := chat.DefaultConfig()
		cfg = &def
	}

	if o.apiURL != "" {
		cfg.Relay.BaseURL = o.apiURL
	}
	if o.mode != "" {
		cfg.Mode = o.mode
	}
	if o.archive != "" {
		cfg.Memory.Path = o.archive
	}
	if cfg.Relay.BaseURL == "" {
		return nil, fmt.Errorf("no relay url: set --api-url or $%s", relay.EnvBaseURL)
	}
	return cfg, nil
}
