package cli

import (
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "show <document>",
		Short: "Render a document's resolved version",
		Long: `Render a document with system state injected into the frontmatter.

Resolution picks the deployed version if one is set, otherwise the
latest approved version, otherwise the latest version. Pass --version
to render a specific historical version instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], version, cmd)
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "explicit version number (default: resolved)")

	return cmd
}

func runShow(opts *RootOptions, ref string, version int, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	eng, st, err := openEngine(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var number *int
	if version > 0 {
		number = &version
	}

	rendered, err := eng.RenderDocument(cmd.Context(), ref, number)
	if err != nil {
		return reportDomainError(f, err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]string{"content": rendered})
	}
	_, err = cmd.OutOrStdout().Write([]byte(rendered))
	return err
}
