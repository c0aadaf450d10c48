package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/model"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var workItem bool

	cmd := &cobra.Command{
		Use:   "history <ref>",
		Short: "Show the audit trail for a document or work item",
		Long: `Print every recorded change, oldest first, including blocked
transition attempts (marked with a BLOCKED reason).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], workItem, cmd)
		},
	}

	cmd.Flags().BoolVar(&workItem, "workitem", false, "treat the reference as a work item")

	return cmd
}

func runHistory(opts *RootOptions, ref string, workItem bool, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var entries []model.HistoryEntry
	if workItem {
		entries, err = eng.WorkItemHistory(cmd.Context(), ref)
	} else {
		entries, err = eng.DocumentHistory(cmd.Context(), ref)
	}
	if err != nil {
		return reportDomainError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(entries)
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-15s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.ChangeType)
		if e.FieldName != "" {
			line += fmt.Sprintf("  %s: %s -> %s", e.FieldName, e.OldValue, e.NewValue)
		}
		if e.ChangeReason != "" {
			line += "  (" + e.ChangeReason + ")"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
