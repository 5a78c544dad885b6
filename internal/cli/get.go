package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one indexed artifact by ledger transaction id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	r, err := openRepository(opts)
	if err != nil {
		return commandError(formatter, err.Error())
	}
	defer r.Close()

	rec, err := r.GetByID(cmd.Context(), id)
	if err != nil {
		return reportFailure(formatter, err)
	}
	if rec == nil {
		_ = formatter.Error("NOT_FOUND", fmt.Sprintf("no artifact indexed with id %q", id), nil)
		return NewExitError(ExitFailure, "artifact not found")
	}

	if formatter.Format == "json" {
		return formatter.Success(toView(*rec))
	}
	fmt.Fprint(formatter.Writer, formatRecord(*rec))
	return nil
}
