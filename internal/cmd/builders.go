package cmd

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/verdict/pkg/query"
)

var buildersCmd = &cobra.Command{
	Use:   "builders",
	Short: "List builders for a revision with their observed statuses",
	Long: `List every builder name seen for a revision together with the status
of each observed instance. A glob pattern narrows the listing.

Example:
  verdict builders --repo projects/cedar --revision abc123def456
  verdict builders --repo projects/cedar --revision abc123def456 --match "Windows*"`,
	RunE: runBuilders,
}

var (
	buildersRepo     string
	buildersRevision string
	buildersMatch    string
	buildersOutput   string
)

func init() {
	rootCmd.AddCommand(buildersCmd)

	buildersCmd.Flags().StringVar(&buildersRepo, "repo", "", "Repository name (required)")
	buildersCmd.Flags().StringVar(&buildersRevision, "revision", "", "Revision (required)")
	buildersCmd.Flags().StringVar(&buildersMatch, "match", "", "Glob pattern on builder names")
	buildersCmd.Flags().StringVarP(&buildersOutput, "output", "o", "table", "Output format (table|json|yaml)")

	_ = buildersCmd.MarkFlagRequired("repo")
	_ = buildersCmd.MarkFlagRequired("revision")
}

func runBuilders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if buildersMatch != "" {
		if !doublestar.ValidatePattern(buildersMatch) {
			return exitError(foundry.ExitInvalidArgument, "Invalid --match pattern", nil)
		}
	}

	svc, err := buildService(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid backend configuration", err)
	}

	scope := query.Scope{Repo: buildersRepo, Revision: buildersRevision}
	outcomes, err := svc.Builders(ctx, scope)
	if err != nil {
		if query.IsConfig(err) {
			return exitError(foundry.ExitInvalidArgument, "Invalid query", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to list builders", err)
	}

	if buildersMatch != "" {
		filtered := outcomes[:0]
		for _, o := range outcomes {
			ok, _ := doublestar.Match(buildersMatch, o.Builder)
			if ok {
				filtered = append(filtered, o)
			}
		}
		outcomes = filtered
	}

	if buildersOutput == "table" {
		rows := make([][]string, 0, len(outcomes))
		for _, o := range outcomes {
			names := make([]string, 0, len(o.Statuses))
			for _, st := range o.Statuses {
				names = append(names, st.String())
			}
			rows = append(rows, []string{o.Builder, strings.Join(names, ",")})
		}
		return renderTable([]string{"BUILDER", "STATUSES"}, rows)
	}
	return renderOutput(outcomes, buildersOutput)
}
