package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewDepsCommand creates the deps command group.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Inspect the dependency graph",
	}
	cmd.AddCommand(newDepsTreeCommand(rootOpts))
	cmd.AddCommand(newDepsBlockedCommand(rootOpts))
	return cmd
}

func newDepsTreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <document>",
		Short: "Show the transitive dependency closure",
		Long: `Compute the full dependency closure of a document.

Traversal is iterative with a hard depth bound; graphs deeper than
the bound are reported rather than followed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDepsTree(rootOpts, args[0], cmd)
		},
	}
}

func runDepsTree(opts *RootOptions, ref string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	d, _, err := eng.ResolveVersion(cmd.Context(), ref, nil)
	if err != nil {
		return reportDomainError(f, err)
	}
	closure, err := eng.TransitiveDependencies(cmd.Context(), d.ID)
	if err != nil {
		return reportDomainError(f, err)
	}

	ids := make([]string, 0, len(closure))
	for id := range closure {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if opts.Format == "json" {
		return f.Success(map[string]any{"document": d.HumanReadableID, "depends_on": ids})
	}
	if len(ids) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s has no dependencies.\n", d.HumanReadableID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s depends on %d document(s):\n", d.HumanReadableID, len(ids))
	for _, id := range ids {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
	}
	return nil
}

func newDepsBlockedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "blocked <document>",
		Short: "Show the direct dependencies blocking implementation",
		Long: `List the direct dependencies of a document that have no deployed
version. A document is ready to implement when its resolved version is
approved and this list is empty; only one hop is checked.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDepsBlocked(rootOpts, args[0], cmd)
		},
	}
}

func runDepsBlocked(opts *RootOptions, ref string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	blocking, err := eng.BlockedBy(cmd.Context(), ref)
	if err != nil {
		return reportDomainError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{"document": ref, "blocked_by": blocking})
	}
	if len(blocking) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not blocked by its dependencies.\n", ref)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is blocked by:\n", ref)
	for _, id := range blocking {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
	}
	return nil
}
