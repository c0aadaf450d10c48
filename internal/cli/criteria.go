package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCriteriaCommand creates the criteria command group.
func NewCriteriaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "Inspect and update acceptance criteria",
	}
	cmd.AddCommand(newCriteriaListCommand(rootOpts))
	cmd.AddCommand(newCriteriaMetCommand(rootOpts))
	cmd.AddCommand(newCriteriaExtractCommand(rootOpts))
	return cmd
}

func newCriteriaListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <document>",
		Short:         "List the resolved version's acceptance criteria",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCriteriaList(rootOpts, args[0], cmd)
		},
	}
}

func runCriteriaList(opts *RootOptions, ref string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := eng.ListCriteria(cmd.Context(), ref, nil)
	if err != nil {
		return reportDomainError(f, err)
	}
	stats, err := eng.CriteriaSummary(cmd.Context(), ref, nil)
	if err != nil {
		return reportDomainError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{"criteria": rows, "summary": stats})
	}
	out := cmd.OutOrStdout()
	for _, c := range rows {
		mark := " "
		if c.Met {
			mark = "x"
		}
		if c.Category != "" {
			fmt.Fprintf(out, "%3d [%s] %s (%s)  id=%s\n", c.Ordinal, mark, c.Text, c.Category, c.ID)
		} else {
			fmt.Fprintf(out, "%3d [%s] %s  id=%s\n", c.Ordinal, mark, c.Text, c.ID)
		}
	}
	fmt.Fprintf(out, "%d/%d met (%.0f%%)\n", stats.Met, stats.Total, stats.Percent)
	return nil
}

func newCriteriaMetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		unmet bool
		by    string
	)

	cmd := &cobra.Command{
		Use:   "met <criterion-id>",
		Short: "Mark an acceptance criterion met or unmet",
		Long: `Toggle the met flag on a criterion.

Marking met requires --by; marking unmet clears both the met-by and
met-at fields so the pair invariant holds.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCriteriaMet(rootOpts, args[0], !unmet, by, cmd)
		},
	}

	cmd.Flags().BoolVar(&unmet, "unmet", false, "mark the criterion unmet instead")
	cmd.Flags().StringVar(&by, "by", "", "who verified the criterion (required unless --unmet)")

	return cmd
}

func runCriteriaMet(opts *RootOptions, id string, met bool, by string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := eng.SetCriterionMet(cmd.Context(), id, met, by)
	if err != nil {
		return reportDomainError(f, err)
	}
	state := "unmet"
	if c.Met {
		state = "met"
	}
	return f.Successf(c, "Criterion %d is now %s", c.Ordinal, state)
}

func newCriteriaExtractCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <document>",
		Short: "Re-extract criteria from the resolved version",
		Long: `Re-run checklist extraction against the stored content and
reconcile with the existing rows. Idempotent: unchanged items are left
alone, toggled checkboxes update in place, new items append.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCriteriaExtract(rootOpts, args[0], cmd)
		},
	}
}

func runCriteriaExtract(opts *RootOptions, ref string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := eng.ReextractCriteria(cmd.Context(), ref, nil)
	if err != nil {
		return reportDomainError(f, err)
	}
	return f.Successf(rows, "Extracted %d criteria for %s", len(rows), ref)
}
