package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forumdb/forumdb/internal/config"
	"github.com/forumdb/forumdb/internal/search"
)

func newSearchCmd(cfg *config.Config) *cobra.Command {
	var limit int64
	cmd := &cobra.Command{
		Use:   "search <keyword>...",
		Short: "List questions whose terms contain any keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keywords := search.Keywords(strings.Join(args, " "))
			if len(keywords) == 0 {
				return fmt.Errorf("no searchable keywords in %q (terms have at least 3 characters)", strings.Join(args, " "))
			}
			st, closeStore, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			hits, err := search.NewService(st).Search(cmd.Context(), keywords, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No matching questions.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tTITLE")
			for _, h := range hits {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.ID, h.CreationDate, h.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", search.DefaultLimit, "Maximum number of results")
	return cmd
}
