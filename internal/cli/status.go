package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	PriceBytes int64
}

// statusView is the JSON shape of the status command output.
type statusView struct {
	Balance    float64  `json:"balance"`
	PriceBytes int64    `json:"priceBytes,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show ledger account balance and storage pricing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.PriceBytes, "price", 0, "also quote the cost of storing this many bytes")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
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

	balance, err := r.Balance(cmd.Context())
	if err != nil {
		return reportFailure(formatter, err)
	}

	view := statusView{Balance: balance}
	if opts.PriceBytes > 0 {
		price, err := r.Price(cmd.Context(), opts.PriceBytes)
		if err != nil {
			return reportFailure(formatter, err)
		}
		view.PriceBytes = opts.PriceBytes
		view.Price = &price
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}

	fmt.Fprintf(formatter.Writer, "balance: %g\n", view.Balance)
	if view.Price != nil {
		fmt.Fprintf(formatter.Writer, "price for %d bytes: %g\n", view.PriceBytes, *view.Price)
	}
	return nil
}
