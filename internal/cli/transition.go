package cli

import (
	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/model"
)

// NewTransitionCommand creates the transition command.
func NewTransitionCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "transition <document> <status>",
		Short: "Move a document's resolved version to a new status",
		Long: `Transition a document through its lifecycle.

Allowed moves follow the decision table: draft, review, approved,
in_progress, implemented, validated, deployed, with one step back at
every forward stage. Rejected transitions are still recorded in the
document's history with a BLOCKED reason.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(rootOpts, args[0], args[1], reason, cmd)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "change reason recorded in history")

	return cmd
}

func runTransition(opts *RootOptions, ref, status, reason string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := eng.TransitionDocument(cmd.Context(), ref, model.Status(status), reason)
	if err != nil {
		return reportDomainError(f, err)
	}
	return f.Successf(v, "%s version %d is now %s", ref, v.VersionNumber, v.Status)
}

// NewDeployCommand creates the deploy command.
func NewDeployCommand(rootOpts *RootOptions) *cobra.Command {
	var release string

	cmd := &cobra.Command{
		Use:   "deploy <document> <version-id>",
		Short: "Point a document at a deployed version",
		Long: `Set the deployed version pointer for a document.

The pointer is last-write-wins; no history of prior deployments is
kept beyond the audit trail. With --release, the deployment is
attributed to a release work item and rendered documents carry a
deployed-<release> status tag.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(rootOpts, args[0], args[1], release, cmd)
		},
	}

	cmd.Flags().StringVar(&release, "release", "", "release work item reference")

	return cmd
}

func runDeploy(opts *RootOptions, ref, versionID, release string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := eng.SetDeployedVersion(cmd.Context(), ref, versionID, release)
	if err != nil {
		return reportDomainError(f, err)
	}
	return f.Successf(v, "%s deployed at version %d", ref, v.VersionNumber)
}
