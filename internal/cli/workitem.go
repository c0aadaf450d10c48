package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/engine"
	"github.com/specledger/specledger/internal/model"
)

// NewWorkItemCommand creates the workitem command group.
func NewWorkItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workitem",
		Aliases: []string{"wi"},
		Short:   "Manage work items",
	}
	cmd.AddCommand(newWorkItemCreateCommand(rootOpts))
	cmd.AddCommand(newWorkItemShowCommand(rootOpts))
	cmd.AddCommand(newWorkItemProposeCommand(rootOpts))
	cmd.AddCommand(newWorkItemTransitionCommand(rootOpts))
	return cmd
}

func newWorkItemCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		title    string
		assignee string
		affected []string
	)

	cmd := &cobra.Command{
		Use:   "create <type>",
		Short: "Create a work item",
		Long: `Create a work item (change_request, defect, debt or release).

Each affected document's resolved version is pinned as a target; for
change requests the merge baseline hash is captured at the same time.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkItemCreate(rootOpts, args[0], title, assignee, affected, cmd)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "work item title (required)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee")
	cmd.Flags().StringSliceVar(&affected, "doc", nil, "affected document reference (repeatable)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func runWorkItemCreate(opts *RootOptions, itemType, title, assignee string, affected []string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := eng.CreateWorkItem(cmd.Context(), engine.CreateWorkItemParams{
		Type:         model.WorkItemType(itemType),
		Title:        title,
		Assignee:     assignee,
		ProjectID:    opts.Project,
		AffectedDocs: affected,
	})
	if err != nil {
		return reportDomainError(f, err)
	}
	return f.Successf(w, "Created %s (%s)", w.HumanReadableID, w.Type)
}

func newWorkItemShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <work-item>",
		Short:         "Show a work item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkItemShow(rootOpts, args[0], cmd)
		},
	}
}

func runWorkItemShow(opts *RootOptions, ref string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := eng.GetWorkItem(cmd.Context(), ref)
	if err != nil {
		return reportDomainError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(w)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s  %s\n", w.HumanReadableID, w.Type, w.Status)
	fmt.Fprintf(out, "Title:    %s\n", w.Title)
	if w.Assignee != "" {
		fmt.Fprintf(out, "Assignee: %s\n", w.Assignee)
	}
	if len(w.AffectedDocs) > 0 {
		fmt.Fprintf(out, "Affected: %d document(s)\n", len(w.AffectedDocs))
	}
	if len(w.ProposedContent) > 0 {
		fmt.Fprintf(out, "Proposed: %d edit(s) pending merge\n", len(w.ProposedContent))
	}
	return nil
}

func newWorkItemProposeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "propose <work-item> <document> <content-file>",
		Short: "Record proposed content on a change request",
		Long: `Attach replacement content for a document to a change request.

The document's current resolved content hash is captured as the merge
baseline; at merge time a changed hash aborts with a conflict.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkItemPropose(rootOpts, args[0], args[1], args[2], cmd)
		},
	}
}

func runWorkItemPropose(opts *RootOptions, workItemRef, docRef, contentPath string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	content, err := readContent(contentPath, cmd)
	if err != nil {
		return err
	}

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := eng.UpdateProposedContent(cmd.Context(), workItemRef, docRef, content)
	if err != nil {
		return reportDomainError(f, err)
	}
	return f.Successf(w, "Recorded proposed content for %s on %s", docRef, w.HumanReadableID)
}

func newWorkItemTransitionCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "transition <work-item> <status>",
		Short: "Move a work item to a new status",
		Long: `Transition a work item through its lifecycle.

A change request entering completed triggers the merge executor:
each proposed edit becomes a new approved version of its document,
provided the captured baseline still matches. Releases use a reduced
table that skips implemented and validated.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkItemTransition(rootOpts, args[0], args[1], reason, cmd)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "change reason recorded in history")

	return cmd
}

func runWorkItemTransition(opts *RootOptions, ref, status, reason string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	w, merged, err := eng.TransitionWorkItem(cmd.Context(), ref, model.WorkItemStatus(status), reason)
	if err != nil {
		return reportDomainError(f, err)
	}
	if len(merged) > 0 {
		return f.Successf(map[string]any{"work_item": w, "merged_versions": merged},
			"%s is now %s; merged %d document(s)", w.HumanReadableID, w.Status, len(merged))
	}
	return f.Successf(w, "%s is now %s", w.HumanReadableID, w.Status)
}
