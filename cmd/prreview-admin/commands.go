package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/target/prreview-api/internal/bootstrap"
	"github.com/target/prreview-api/internal/domain/model"
	"github.com/target/prreview-api/internal/domain/review"
	"github.com/target/prreview-api/internal/service"
)

const defaultMigrationTimeout = 5 * time.Minute

func newRootCmd(app *adminApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "prreview-admin",
		Short:         "Operate the pull-request review job store and queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(app),
		newSubmitCmd(app),
		newStatusCmd(app),
		newResultCmd(app),
		newListCmd(app),
		newStatsCmd(app),
		newRequeueCmd(app),
	)
	return root
}

func newMigrateCmd(app *adminApp) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured job store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.jobStore()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := bootstrap.RunMigrations(ctx, store, app.logger); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", store.Dialect.Name)
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultMigrationTimeout, "maximum time to apply migrations")
	return cmd
}

func newSubmitCmd(app *adminApp) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "submit <repo-url> <pr-number>",
		Short: "Queue a pull request for review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := app.jobService()
			if err != nil {
				return err
			}
			queue, err := app.queue()
			if err != nil {
				return err
			}
			dispatcher, err := service.NewDispatcherService(service.DispatcherServiceOptions{
				Jobs:   jobs,
				Queue:  queue,
				Sealer: bootstrap.CreateSealer(app.cfg.Security.CredentialsEncryptionKey, app.logger),
				Parser: review.NewRepositoryParser(app.cfg.Pipeline.AllowedHosts),
				Logger: app.logger,
			})
			if err != nil {
				return err
			}

			id, err := dispatcher.Submit(cmd.Context(), model.SubmitReviewRequest{
				RepositoryReference: args[0],
				ChangeIdentifier:    args[1],
				Credentials:         token,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "GitHub token used for this review (defaults to GITHUB_TOKEN on the worker)")
	return cmd
}

func newStatusCmd(app *adminApp) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a review job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := app.jobService()
			if err != nil {
				return err
			}
			status, err := jobs.GetStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), status)
		},
	}
}

func newResultCmd(app *adminApp) *cobra.Command {
	return &cobra.Command{
		Use:   "result <job-id>",
		Short: "Print the result of a finished review job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := app.jobService()
			if err != nil {
				return err
			}
			job, err := jobs.GetResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), job)
		},
	}
}

func newListCmd(app *adminApp) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent review jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := app.jobService()
			if err != nil {
				return err
			}
			recent, err := jobs.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJobTable(cmd.OutOrStdout(), recent)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of jobs to show")
	return cmd
}

func newStatsCmd(app *adminApp) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show job counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, err := app.jobService()
			if err != nil {
				return err
			}
			stats, err := jobs.Stats(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "pending\t%d\n", stats.Pending)
			fmt.Fprintf(tw, "processing\t%d\n", stats.Processing)
			fmt.Fprintf(tw, "completed\t%d\n", stats.Completed)
			fmt.Fprintf(tw, "failed\t%d\n", stats.Failed)
			fmt.Fprintf(tw, "total\t%d\n", stats.Total())
			return tw.Flush()
		},
	}
}

func newRequeueCmd(app *adminApp) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue-inflight",
		Short: "Move tasks stranded in flight by a crashed worker back to pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queue, err := app.queue()
			if err != nil {
				return err
			}
			moved, err := queue.RequeueInflight(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "requeued %d task(s)\n", moved)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJobTable(w io.Writer, jobs []*model.Job) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tREPOSITORY\tCHANGE\tUPDATED")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.Status, j.RepositoryReference, j.ChangeIdentifier, j.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
