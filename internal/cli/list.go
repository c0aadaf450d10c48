package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var ready bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents with resolved status",
		Long: `List a project's documents ordered by status rank.

With --ready, list only documents whose resolved version is approved
and whose direct dependencies all have a deployed version.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, ready, cmd)
		},
	}

	cmd.Flags().BoolVar(&ready, "ready", false, "only documents ready to implement")

	return cmd
}

func runList(opts *RootOptions, ready bool, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	list := eng.ListDocuments
	if ready {
		list = eng.ListReadyToImplement
	}
	docs, err := list(cmd.Context(), opts.Project)
	if err != nil {
		return reportDomainError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents found.")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s v%-3d %-12s %s\n",
			d.Document.HumanReadableID, d.Version.VersionNumber, d.Version.Status, d.Version.Title)
	}
	return nil
}
