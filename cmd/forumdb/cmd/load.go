package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forumdb/forumdb/internal/config"
	"github.com/forumdb/forumdb/internal/ingest"
	"github.com/forumdb/forumdb/internal/loader"
	"github.com/forumdb/forumdb/pkg/logger"
)

func newLoadCmd(cfg *config.Config) *cobra.Command {
	var dataRoot string
	var fromMinIO bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the posts, tags and votes collections with the bulk corpus",
		Long: `Drops the posts, tags and votes collections and reloads them from
Posts.json, Tags.json and Votes.json. The files are searched for in
data/ under the data root, then in the data root and its two nearest
ancestors, nearest first, or read from the MinIO bucket with --minio.

Exit status is 0 on success, 1 for an invalid port and 2 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataRoot != "" {
				cfg.Data.Root = dataRoot
			}
			st, closeStore, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			jobs := ingest.DefaultJobs()
			src, err := openSource(cmd.Context(), cfg, fromMinIO, ingest.Resources(jobs))
			if err != nil {
				return err
			}
			report, err := ingest.New(st, src).Run(cmd.Context(), jobs...)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataRoot, "data-root", "", "Directory to search for data/ (default DATA_ROOT)")
	cmd.Flags().BoolVar(&fromMinIO, "minio", false, "Read the bulk files from the MINIO_BUCKET bucket")

	return cmd
}

// openSource checks that every resource is present before anything is dropped.
func openSource(ctx context.Context, cfg *config.Config, fromMinIO bool, resources []string) (loader.Source, error) {
	if fromMinIO {
		src, err := loader.NewObjectSource(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := src.Check(ctx, resources...); err != nil {
			return nil, err
		}
		logger.Infof("reading bulk files from bucket %s", cfg.MinIO.Bucket)
		return src, nil
	}
	src, err := loader.NewDirSource(cfg.Data.Root, resources...)
	if err != nil {
		return nil, err
	}
	logger.Infof("reading bulk files from %s", src.Dir)
	return src, nil
}

func printReport(w io.Writer, report *ingest.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tLOADED\tINSERTED\tREJECTED\tFIRST REJECTION")
	for _, r := range report.Results {
		first := r.FirstRejection
		if first == "" {
			first = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", r.Collection, r.Loaded, r.Inserted, r.Rejected, first)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Completed in %.5f seconds\n", report.Took.Seconds())
}
