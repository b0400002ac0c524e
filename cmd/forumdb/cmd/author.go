package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forumdb/forumdb/internal/authoring"
	"github.com/forumdb/forumdb/internal/config"
	"github.com/forumdb/forumdb/internal/console"
)

// withAuthoring connects the store and allocator, seeds the allocator and
// runs fn with a console on the command's streams.
func withAuthoring(cmd *cobra.Command, cfg *config.Config, fn func(*authoring.Service, *console.Prompter) (bool, error)) error {
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ids, closeIDs, err := newAllocator(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeIDs()

	svc := authoring.NewService(st, ids)
	if err := svc.Seed(cmd.Context()); err != nil {
		return err
	}
	p := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
	committed, err := fn(svc, p)
	if err != nil {
		return err
	}
	if !committed {
		p.Say("Nothing was posted.")
	}
	return nil
}

func newAskCmd(cfg *config.Config) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Post a question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthoring(cmd, cfg, func(svc *authoring.Service, p *console.Prompter) (bool, error) {
				return svc.AskQuestion(cmd.Context(), p, user)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Acting user id (anonymous when empty)")
	return cmd
}

func newAnswerCmd(cfg *config.Config) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "answer <question-id>",
		Short: "Post an answer to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthoring(cmd, cfg, func(svc *authoring.Service, p *console.Prompter) (bool, error) {
				return svc.AskAnswer(cmd.Context(), p, user, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Acting user id (anonymous when empty)")
	return cmd
}

func newVoteCmd(cfg *config.Config) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "vote <post-id>",
		Short: "Up-vote a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthoring(cmd, cfg, func(svc *authoring.Service, p *console.Prompter) (bool, error) {
				return svc.AskVote(cmd.Context(), p, user, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Acting user id (anonymous when empty)")
	return cmd
}
