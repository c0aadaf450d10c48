package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/doc"
	"github.com/specledger/specledger/internal/engine"
	"github.com/specledger/specledger/internal/graph"
	"github.com/specledger/specledger/internal/model"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		tags   []string
		reason string
	)

	cmd := &cobra.Command{
		Use:   "create <type> <content-file>",
		Short: "Create a document with its first version",
		Long: `Create a document from a markdown file with YAML frontmatter.

The frontmatter supplies the authored fields: type, title, parent
(required for non-epic types) and depends_on. Pass "-" to read the
content from stdin.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], args[1], tags, reason, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "user tag (repeatable, reserved status tags rejected)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason recorded in history")

	return cmd
}

func runCreate(opts *RootOptions, docType, contentPath string, tags []string, reason string, cmd *cobra.Command) error {
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

	created, err := eng.CreateDocument(cmd.Context(), engine.CreateDocumentParams{
		Type:      model.DocType(docType),
		ProjectID: opts.Project,
		Content:   content,
		Tags:      tags,
		Reason:    reason,
	})
	if err != nil {
		return reportDomainError(f, err)
	}

	for _, w := range created.Warnings {
		f.VerboseLog("warning: %s", w.Message)
	}
	return f.Successf(created, "Created %s (version %d, %s)",
		created.Document.HumanReadableID, created.Version.VersionNumber, created.Version.Status)
}

// reportDomainError maps domain errors onto formatter output and exit
// codes. The formatted message is the single user-facing report; the
// returned ExitError only sets the process exit code.
func reportDomainError(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric

	var parseErr *doc.ParseError
	var validationErr *doc.ValidationError
	var tagErr *doc.ReservedTagError
	var cycleErr *graph.CircularDependencyError
	var conflictErr *engine.ConflictError
	switch {
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		code = ErrCodeParse
	case errors.As(err, &tagErr):
		code = ErrCodeParse
	case errors.As(err, &cycleErr):
		code = ErrCodeGraph
	case errors.As(err, &conflictErr):
		code = ErrCodeConflict
	case isTransitionError(err):
		code = ErrCodeTransition
	case isNotFound(err):
		code = ErrCodeNotFound
	}

	if ferr := f.Error(code, err.Error(), nil); ferr != nil {
		return ferr
	}
	return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
}
