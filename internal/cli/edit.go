package cli

import (
	"github.com/spf13/cobra"
)

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "edit <document> <content-file>",
		Short: "Append a new version with edited content",
		Long: `Replace a document's content by appending a new version.

Versions are immutable; an edit never rewrites history. When the
resolved version is in review or approved status, the new version
starts over in draft. An edit with unchanged authored content is a
no-op.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, args[0], args[1], reason, cmd)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "change reason recorded in history")

	return cmd
}

func runEdit(opts *RootOptions, ref, contentPath, reason string, cmd *cobra.Command) error {
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

	result, err := eng.EditContent(cmd.Context(), ref, content, reason, "")
	if err != nil {
		return reportDomainError(f, err)
	}

	if !result.Changed {
		return f.Successf(result, "%s unchanged (content identical to version %d)",
			result.Document.HumanReadableID, result.Version.VersionNumber)
	}
	for _, w := range result.Warnings {
		f.VerboseLog("warning: %s", w.Message)
	}
	return f.Successf(result, "Updated %s to version %d (%s)",
		result.Document.HumanReadableID, result.Version.VersionNumber, result.Version.Status)
}
