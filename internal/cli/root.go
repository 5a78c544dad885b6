// Package cli implements the arkdex command line interface: thin cobra
// commands over the repository coordinator.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkdex/arkdex/internal/ledger"
	"github.com/arkdex/arkdex/internal/repo"
	"github.com/arkdex/arkdex/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // local index path
	Gateway  string // ledger gateway base URL

	// OpenRepository allows overriding repository construction (for
	// testing with a fake ledger). If nil, the default builds an HTTP
	// gateway client over --gateway and opens the index at --db.
	OpenRepository func(opts *RootOptions) (*repo.Repository, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the arkdex CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "arkdex",
		Short: "arkdex - versioned artifacts on an append-only ledger",
		Long: `arkdex tags, uploads, and rediscovers versioned artifacts (datasets,
model checkpoints, configuration blobs) stored on an append-only remote
ledger, keeping a fast local index of everything it has pushed.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "arkdex.db", "path to the local index database")
	cmd.PersistentFlags().StringVar(&opts.Gateway, "gateway", "", "ledger gateway base URL")

	// Add subcommands
	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewLatestCommand(opts))
	cmd.AddCommand(NewVersionsCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging routes slog to stderr so JSON output stays clean.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// openRepository builds the repository from the global flags, or defers to
// the test override.
func openRepository(opts *RootOptions) (*repo.Repository, error) {
	if opts.OpenRepository != nil {
		return opts.OpenRepository(opts)
	}

	if opts.Gateway == "" {
		return nil, fmt.Errorf("--gateway is required")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("open local index: %w", err)
	}

	client := ledger.NewGateway(opts.Gateway)
	return repo.New(client, st), nil
}
