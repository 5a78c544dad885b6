package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkdex/arkdex/internal/queryspec"
	"github.com/arkdex/arkdex/internal/record"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	App         string
	ContentType string
	DatasetName string
	Split       string
	Version     string
	Owner       string
	Start       string
	End         string
	SortBy      string
	Order       string
	Limit       int
	Cursor      string
	All         bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search the local index",
		Long: `Search indexed artifacts by tag filters and time bounds.

All filters combine with AND. Results are paginated; pass the cursor
printed by one page to fetch the next.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "filter by application tag")
	cmd.Flags().StringVar(&opts.ContentType, "content-type", "", "filter by content type tag")
	cmd.Flags().StringVar(&opts.DatasetName, "dataset", "", "filter by dataset name tag")
	cmd.Flags().StringVar(&opts.Split, "split", "", "filter by split tag")
	cmd.Flags().StringVar(&opts.Version, "version", "", "filter by version tag")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "filter by owner tag")
	cmd.Flags().StringVar(&opts.Start, "start", "", "inclusive lower time bound (RFC3339)")
	cmd.Flags().StringVar(&opts.End, "end", "", "inclusive upper time bound (RFC3339)")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", "", "sort field (timestamp|createdAt)")
	cmd.Flags().StringVar(&opts.Order, "order", "", "sort order (asc|desc)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, fmt.Sprintf("page size (default %d)", queryspec.DefaultLimit))
	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "pagination cursor from a previous page")
	cmd.Flags().BoolVar(&opts.All, "all", false, "return every match, unpaginated")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.All && (opts.Limit != 0 || opts.Cursor != "") {
		return commandError(formatter, "--all cannot be combined with --limit or --cursor")
	}

	r, err := openRepository(opts.RootOptions)
	if err != nil {
		return commandError(formatter, err.Error())
	}
	defer r.Close()

	limit := opts.Limit
	if opts.All {
		limit = queryspec.LimitAll
	}

	page, err := r.Query(cmd.Context(), queryspec.Options{
		App:         opts.App,
		ContentType: opts.ContentType,
		DatasetName: opts.DatasetName,
		Split:       opts.Split,
		Version:     opts.Version,
		Owner:       opts.Owner,
		StartTime:   opts.Start,
		EndTime:     opts.End,
		SortBy:      opts.SortBy,
		SortOrder:   opts.Order,
		Limit:       limit,
		Cursor:      opts.Cursor,
	})
	if err != nil {
		return reportFailure(formatter, err)
	}

	return outputPage(formatter, page)
}

// pageView is the JSON shape of a query page.
type pageView struct {
	Records    []recordView `json:"records"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

func outputPage(formatter *OutputFormatter, page record.Page) error {
	if formatter.Format == "json" {
		return formatter.Success(pageView{
			Records:    toViews(page.Records),
			NextCursor: page.NextCursor,
		})
	}

	fmt.Fprintln(formatter.Writer, formatRecords(page.Records))
	if page.NextCursor != "" {
		fmt.Fprintf(formatter.Writer, "\nmore results: --cursor %s\n", page.NextCursor)
	}
	return nil
}
