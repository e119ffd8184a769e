package cmd

import (
	"strconv"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/verdict/internal/observability"
	"github.com/3leaps/verdict/pkg/query"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Resolve the scheduling outcome of a builder's jobs",
	Long: `Resolve every observed instance of a builder for a revision to its
true scheduling outcome.

Example:
  verdict status --repo projects/cedar --revision abc123def456 --builder "Linux x64 opt"
  verdict status --repo projects/cedar --revision abc123def456 --builder "Linux x64 opt" --output json
  verdict status --backend resultset --repo projects/cedar --revision abc123def456 --builder linux64-opt`,
	RunE: runStatus,
}

var (
	statusRepo     string
	statusRevision string
	statusBuilder  string
	statusOutput   string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusRepo, "repo", "", "Repository name (required)")
	statusCmd.Flags().StringVar(&statusRevision, "revision", "", "Revision (required)")
	statusCmd.Flags().StringVar(&statusBuilder, "builder", "", "Exact builder name (required)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")

	_ = statusCmd.MarkFlagRequired("repo")
	_ = statusCmd.MarkFlagRequired("revision")
	_ = statusCmd.MarkFlagRequired("builder")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := buildService(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid backend configuration", err)
	}

	scope := query.Scope{Repo: statusRepo, Revision: statusRevision}
	observability.CLILogger.Debug("Resolving builder statuses",
		zap.String("scope", scope.String()),
		zap.String("builder", statusBuilder))

	statuses, err := svc.MatchingStatuses(ctx, scope, statusBuilder)
	if err != nil {
		if query.IsConfig(err) {
			return exitError(foundry.ExitInvalidArgument, "Invalid query", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to resolve statuses", err)
	}

	if statusOutput == "table" {
		rows := make([][]string, 0, len(statuses))
		for _, s := range statuses {
			rows = append(rows, []string{s.Builder, strconv.FormatInt(s.RequestID, 10), s.Status.String()})
		}
		return renderTable([]string{"BUILDER", "REQUEST_ID", "STATUS"}, rows)
	}
	return renderOutput(statuses, statusOutput)
}
