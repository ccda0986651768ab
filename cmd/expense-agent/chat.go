package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/services"
)

// chatter is the part of the agent service the CLI drives.
type chatter interface {
	Chat(ctx context.Context, userID, message string) (domain.RunRecord, error)
}

type chatOptions struct {
	interactive bool
	userID      string
	output      string
}

func newChatCmd(root *rootOptions) *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   `chat ["message"]`,
		Short: "Send a message to the agent",
		Example: `  expense-agent chat "I spent $12.50 on lunch"
  expense-agent chat --user alice -i`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.interactive {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "yaml" {
				return fmt.Errorf("unsupported --output %q (text or yaml)", opts.output)
			}
			logger, err := newLogger(os.Stderr, root.logLevel)
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), logger, root.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if opts.interactive {
				return interactiveChat(cmd.Context(), a.agent, opts)
			}
			return chatOnce(cmd.Context(), cmd.OutOrStdout(), a.agent, opts, args[0])
		},
	}
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "start an interactive session")
	cmd.Flags().StringVar(&opts.userID, "user", domain.DefaultUserID, "user the expenses belong to")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text or yaml")
	return cmd
}

func chatOnce(ctx context.Context, w io.Writer, agent chatter, opts *chatOptions, message string) error {
	rec, err := agent.Chat(ctx, opts.userID, message)
	// no run record: the message was rejected or never got a slot
	if err != nil && (errors.Is(err, services.ErrInvalidMessage) || rec.ID == "") {
		return err
	}
	if rerr := renderRun(w, opts.output, rec); rerr != nil {
		return rerr
	}
	if errors.Is(err, domain.ErrModelUnavailable) {
		return err
	}
	return nil
}

func interactiveChat(ctx context.Context, agent chatter, opts *chatOptions) error {
	rl, err := readline.New(color.CyanString("you> "))
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s (user %s, 'exit' to quit)\n", color.New(color.Bold).Sprint("expense-agent"), opts.userID)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		}

		if err := chatOnce(ctx, rl.Stdout(), agent, opts, line); err != nil {
			fmt.Fprintln(rl.Stdout(), color.RedString("error: %v", err))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
