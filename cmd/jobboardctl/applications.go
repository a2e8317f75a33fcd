package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jobboard-backend/internal/applications"
)

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "Inspect and remove job applications",
}

var listApplicationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications for a job seeker or a job",
	RunE:  runListApplications,
}

var deleteApplicationCmd = &cobra.Command{
	Use:   "delete <application-id>",
	Short: "Hard-delete an application row",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteApplication,
}

var (
	listJobSeekerID int64
	listJobID       int64
	listStatus      string
)

func init() {
	listApplicationsCmd.Flags().Int64Var(&listJobSeekerID, "job-seeker", 0, "Job seeker id")
	listApplicationsCmd.Flags().Int64Var(&listJobID, "job", 0, "Job id")
	listApplicationsCmd.Flags().StringVar(&listStatus, "status", "", "Comma separated statuses to keep (job seeker listing only)")
	listApplicationsCmd.MarkFlagsMutuallyExclusive("job-seeker", "job")
	listApplicationsCmd.MarkFlagsOneRequired("job-seeker", "job")

	applicationsCmd.AddCommand(listApplicationsCmd, deleteApplicationCmd)
	rootCmd.AddCommand(applicationsCmd)
}

func runListApplications(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()
	return listApplications(commandContext(cmd), app.ApplicationsRepo, cmd.OutOrStdout(), listJobSeekerID, listJobID, listStatus)
}

func runDeleteApplication(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid application id %q", args[0])
	}
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.ApplicationsService.Delete(commandContext(cmd), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted application %d\n", id)
	return nil
}

func listApplications(ctx context.Context, repo applications.Repo, out io.Writer, jobSeekerID, jobID int64, rawStatus string) error {
	var (
		rows []applications.Application
		err  error
	)
	if jobSeekerID > 0 {
		statuses, perr := applications.ParseStatuses(rawStatus)
		if perr != nil {
			return perr
		}
		rows, err = repo.ListByJobSeeker(ctx, jobSeekerID, statuses)
	} else {
		rows, err = repo.ListByJob(ctx, jobID)
	}
	if err != nil {
		return fmt.Errorf("list applications: %w", err)
	}
	if rows == nil {
		rows = []applications.Application{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
