package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// LineageOptions holds flags shared by the latest and versions commands.
type LineageOptions struct {
	*RootOptions
	Split string
}

// NewLatestCommand creates the latest command.
func NewLatestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LineageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "latest <dataset>",
		Short: "Show the most recently indexed version of a dataset",
		Long: `Show the artifact most recently pushed under a dataset name.

Recency means upload time, not version string: a re-push of an older
version string is still the latest.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLatest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Split, "split", "", "restrict the lineage to one split")

	return cmd
}

func runLatest(opts *LineageOptions, dataset string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	r, err := openRepository(opts.RootOptions)
	if err != nil {
		return commandError(formatter, err.Error())
	}
	defer r.Close()

	rec, err := r.LatestVersion(cmd.Context(), dataset, opts.Split)
	if err != nil {
		return reportFailure(formatter, err)
	}
	if rec == nil {
		_ = formatter.Error("NOT_FOUND", fmt.Sprintf("no versions of %q indexed", dataset), nil)
		return NewExitError(ExitFailure, "no versions found")
	}

	if formatter.Format == "json" {
		return formatter.Success(toView(*rec))
	}
	fmt.Fprint(formatter.Writer, formatRecord(*rec))
	return nil
}

// NewVersionsCommand creates the versions command.
func NewVersionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LineageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "versions <dataset>",
		Short:         "List every indexed version of a dataset, newest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Split, "split", "", "restrict the lineage to one split")

	return cmd
}

func runVersions(opts *LineageOptions, dataset string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	r, err := openRepository(opts.RootOptions)
	if err != nil {
		return commandError(formatter, err.Error())
	}
	defer r.Close()

	recs, err := r.AllVersions(cmd.Context(), dataset, opts.Split)
	if err != nil {
		return reportFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(toViews(recs))
	}
	fmt.Fprintln(formatter.Writer, formatRecords(recs))
	return nil
}
