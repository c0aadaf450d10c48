package cli

import (
	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document>",
		Short: "Delete a document and its descendants",
		Long: `Delete a document, cascading through its children.

Deletion is refused while other documents depend on the target or any
of its descendants; the error names the dependents so they can be
unlinked first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

func runDelete(opts *RootOptions, ref string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := eng.DeleteDocument(cmd.Context(), ref); err != nil {
		return reportDomainError(f, err)
	}
	return f.Successf(map[string]string{"deleted": ref}, "Deleted %s", ref)
}
