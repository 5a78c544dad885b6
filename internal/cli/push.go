package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkdex/arkdex/internal/manifest"
	"github.com/arkdex/arkdex/internal/record"
	"github.com/arkdex/arkdex/internal/repo"
)

// PushOptions holds flags for the push command.
type PushOptions struct {
	*RootOptions
	Manifest    string // CUE manifest path (batch mode)
	BatchSize   int
	DatasetName string
	Split       string
	Version     string
	Owner       string
	App         string
	ContentType string
	Receipt     bool
	ExtraTags   []string // key=value pairs
}

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PushOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "push [file]",
		Short: "Upload artifacts to the ledger and index them locally",
		Long: `Upload one artifact file, or a batch described by a CUE manifest.

Single mode takes a file argument plus tag flags. Batch mode takes
--manifest and uploads every entry it lists, in waves, reporting
per-entry success and failure.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "CUE manifest describing a batch of artifacts")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 0, "uploads per wave in batch mode (default 10)")
	cmd.Flags().StringVar(&opts.DatasetName, "dataset", "", "dataset name tag")
	cmd.Flags().StringVar(&opts.Split, "split", "", "split tag (e.g. train, test)")
	cmd.Flags().StringVar(&opts.Version, "version", "", "version tag")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner tag")
	cmd.Flags().StringVar(&opts.App, "app", "", "application tag")
	cmd.Flags().StringVar(&opts.ContentType, "content-type", "", "content type tag")
	cmd.Flags().BoolVar(&opts.Receipt, "receipt", false, "request an upload receipt from the ledger")
	cmd.Flags().StringArrayVar(&opts.ExtraTags, "tag", nil, "extra tag as key=value (repeatable)")

	return cmd
}

func runPush(opts *PushOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Manifest == "" && len(args) == 0 {
		return commandError(formatter, "either a file argument or --manifest is required")
	}
	if opts.Manifest != "" && len(args) > 0 {
		return commandError(formatter, "a file argument and --manifest are mutually exclusive")
	}

	r, err := openRepository(opts.RootOptions)
	if err != nil {
		return commandError(formatter, err.Error())
	}
	defer r.Close()

	if opts.Manifest != "" {
		return runPushManifest(opts, r, formatter, cmd)
	}
	return runPushSingle(opts, r, formatter, cmd, args[0])
}

func runPushSingle(opts *PushOptions, r *repo.Repository, formatter *OutputFormatter, cmd *cobra.Command, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return commandError(formatter, fmt.Sprintf("reading %s: %v", path, err))
	}

	extra, err := parseExtraTags(opts.ExtraTags)
	if err != nil {
		return commandError(formatter, err.Error())
	}

	tags := record.Tags{
		App:         opts.App,
		ContentType: opts.ContentType,
		DatasetName: opts.DatasetName,
		Split:       opts.Split,
		Version:     opts.Version,
		Owner:       opts.Owner,
		CreatedAt:   record.FormatTime(time.Now()),
		Extra:       extra,
	}

	formatter.VerboseLog("Uploading %s (%d bytes)", path, len(payload))

	rec, err := r.UploadOne(cmd.Context(), payload, tags, repo.UploadOptions{WantReceipt: opts.Receipt})
	if err != nil {
		return reportFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(toView(rec))
	}
	fmt.Fprintf(formatter.Writer, "✓ Uploaded and indexed\n\n%s", formatRecord(rec))
	return nil
}

func runPushManifest(opts *PushOptions, r *repo.Repository, formatter *OutputFormatter, cmd *cobra.Command) error {
	m, err := manifest.LoadFile(opts.Manifest)
	if err != nil {
		var loadErr *manifest.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			return commandError(formatter, fmt.Sprintf("%s:%d:%d: %s",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), loadErr.Message))
		}
		return commandError(formatter, err.Error())
	}

	createdAt := record.FormatTime(time.Now())
	items := make([]repo.BatchItem, 0, len(m.Entries))
	for _, entry := range m.Entries {
		payload, err := os.ReadFile(entry.Source)
		if err != nil {
			return commandError(formatter, fmt.Sprintf("reading %s: %v", entry.Source, err))
		}
		items = append(items, repo.BatchItem{
			SourceRef: entry.Source,
			Payload:   payload,
			Tags:      entry.Tags(createdAt),
		})
	}

	formatter.VerboseLog("Uploading %d artifact(s) from %s", len(items), opts.Manifest)

	results, err := r.UploadBatch(cmd.Context(), items, repo.BatchOptions{
		WantReceipt: opts.Receipt,
		BatchSize:   opts.BatchSize,
	})
	if err != nil {
		return reportFailure(formatter, err)
	}

	return outputBatchResults(formatter, results)
}

// batchResultView is the JSON shape of one batch upload outcome.
type batchResultView struct {
	Source string      `json:"source"`
	Record *recordView `json:"record,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

func outputBatchResults(formatter *OutputFormatter, results []repo.BatchResult) error {
	failed := 0
	views := make([]batchResultView, len(results))
	for i, res := range results {
		view := batchResultView{Source: res.SourceRef}
		if res.Err != nil {
			failed++
			view.Error = &CLIError{Code: failureCode(res.Err), Message: res.Err.Error()}
		} else {
			v := toView(res.Record)
			view.Record = &v
		}
		views[i] = view
	}

	if formatter.Format == "json" {
		if err := formatter.Success(views); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "Uploaded %d/%d artifact(s)\n\n", len(results)-failed, len(results))
		for _, view := range views {
			if view.Error != nil {
				fmt.Fprintf(formatter.Writer, "✗ %s\n  %s: %s\n", view.Source, view.Error.Code, view.Error.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "✓ %s → %s\n", view.Source, view.Record.ID)
			}
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d upload(s) failed", failed))
	}
	return nil
}

// parseExtraTags turns repeated key=value flags into a tag map.
func parseExtraTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extra := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --tag %q: expected key=value", pair)
		}
		extra[key] = value
	}
	return extra, nil
}

// commandError reports a command-level error (exit code 2).
func commandError(formatter *OutputFormatter, message string) error {
	_ = formatter.Error("COMMAND_ERROR", message, nil)
	return NewExitError(ExitCommandError, message)
}
