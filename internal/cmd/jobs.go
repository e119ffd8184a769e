package cmd

import (
	"strconv"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/verdict/internal/observability"
	"github.com/3leaps/verdict/pkg/query"
	"github.com/3leaps/verdict/pkg/status"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Find all jobs whose every instance resolved to one status",
	Long: `List the scheduling ids of every builder in a revision whose observed
instances all resolved to the target status. Builders with mixed outcomes
(e.g. a failed run retried into a success) are excluded.

Example:
  verdict jobs --repo projects/cedar --revision abc123def456 --status success
  verdict jobs --repo projects/cedar --revision abc123def456 --status coalesced --output json`,
	RunE: runJobs,
}

var (
	jobsRepo     string
	jobsRevision string
	jobsStatus   string
	jobsOutput   string
)

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().StringVar(&jobsRepo, "repo", "", "Repository name (required)")
	jobsCmd.Flags().StringVar(&jobsRevision, "revision", "", "Revision (required)")
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "Target status name (required)")
	jobsCmd.Flags().StringVarP(&jobsOutput, "output", "o", "table", "Output format (table|json|yaml)")

	_ = jobsCmd.MarkFlagRequired("repo")
	_ = jobsCmd.MarkFlagRequired("revision")
	_ = jobsCmd.MarkFlagRequired("status")
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target, err := status.Parse(jobsStatus)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid --status value", err)
	}

	svc, err := buildService(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid backend configuration", err)
	}

	scope := query.Scope{Repo: jobsRepo, Revision: jobsRevision}
	agg, err := svc.JobsByStatus(ctx, scope, target)
	if err != nil {
		if query.IsConfig(err) {
			return exitError(foundry.ExitInvalidArgument, "Invalid query", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to aggregate jobs", err)
	}

	for _, s := range agg.Skipped {
		observability.CLILogger.Warn("Builder skipped during aggregation",
			zap.String("builder", s.Builder),
			zap.Error(s.Err))
	}

	if jobsOutput == "table" {
		rows := make([][]string, 0, len(agg.RequestIDs))
		for _, id := range agg.RequestIDs {
			rows = append(rows, []string{strconv.FormatInt(id, 10)})
		}
		return renderTable([]string{"REQUEST_ID"}, rows)
	}
	return renderOutput(agg, jobsOutput)
}
