package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/effectus/explorer/choice"
	"github.com/effectus/explorer/matrix"
	"github.com/effectus/explorer/patch"
	"github.com/effectus/explorer/render"
	"github.com/effectus/explorer/source"
)

type options struct {
	configPath  string
	table       string
	sheet       string
	tableFormat string
	s3          source.S3Config

	idColumn   string
	baseConfig string

	rowDelimiter    string
	columnDelimiter string

	format    string
	logFormat string
	verbose   bool

	logger  *slog.Logger
	grammar patch.Grammar
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "explorerc",
		Short: "Resolve explorer choices against a decision table",
		Long: `explorerc loads an explorer's decision table, resolves a deep-link
patch into a renderable row, and encodes or decodes patches.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (YAML, or JSON by extension)")
	flags.StringVar(&opts.table, "table", "", "Decision table path or s3://bucket/key")
	flags.StringVar(&opts.sheet, "sheet", "", "Workbook sheet for XLSX tables")
	flags.StringVar(&opts.tableFormat, "table-format", "", "Table format: tsv or xlsx (default: by extension)")
	flags.StringVar(&opts.idColumn, "id-column", render.DefaultIDColumn, "Column holding the chart id")
	flags.StringVar(&opts.baseConfig, "base-config", "", "JSON chart config to apply row overrides to")
	flags.StringVar(&opts.rowDelimiter, "row-delimiter", patch.DefaultRowDelimiter, "Patch row delimiter")
	flags.StringVar(&opts.columnDelimiter, "column-delimiter", patch.DefaultColumnDelimiter, "Patch column delimiter")
	flags.StringVar(&opts.format, "format", "text", "Output format: text or json")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newResolveCmd(opts),
		newChoicesCmd(opts),
		newSetCmd(opts),
		newEncodeCmd(opts),
		newDecodeCmd(opts),
		newDecisionsCmd(opts),
		newWatchCmd(opts),
	)
	return rootCmd
}

var configFlags = []string{
	"table", "sheet", "table-format", "id-column", "base-config", "row-delimiter", "column-delimiter",
}

func (o *options) setup(cmd *cobra.Command) error {
	if o.configPath != "" {
		cfg, err := loadConfig(o.configPath)
		if err != nil {
			return err
		}
		setFlags := make(map[string]bool, len(configFlags))
		for _, name := range configFlags {
			setFlags[name] = cmd.Flags().Changed(name)
		}
		applyConfig(cfg, o, setFlags)
	}

	switch o.format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), o.logFormat, o.verbose)
	if err != nil {
		return err
	}
	o.logger = logger

	grammar, err := patch.NewGrammar(o.rowDelimiter, o.columnDelimiter)
	if err != nil {
		return err
	}
	o.grammar = grammar
	return nil
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		handlerOpts.Level = slog.LevelDebug
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func (o *options) loadOptions() source.LoadOptions {
	return source.LoadOptions{Format: source.Format(o.tableFormat), Sheet: o.sheet}
}

// loadDocument reads the table from a file or, for s3:// locations and when
// only an S3 bucket is configured, from object storage.
func (o *options) loadDocument(ctx context.Context) (*source.Document, error) {
	if bucket, key, ok := strings.Cut(strings.TrimPrefix(o.table, "s3://"), "/"); ok && strings.HasPrefix(o.table, "s3://") {
		cfg := o.s3
		cfg.Bucket, cfg.Key = bucket, key
		return o.loadS3(ctx, cfg)
	}
	if o.table == "" {
		if o.s3.Bucket == "" {
			return nil, fmt.Errorf("no table given: use --table or a config file")
		}
		return o.loadS3(ctx, o.s3)
	}
	return source.LoadFile(o.table, o.loadOptions())
}

func (o *options) loadS3(ctx context.Context, cfg source.S3Config) (*source.Document, error) {
	loader, err := source.NewS3Loader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("loading table from object storage", "uri", loader.URI())
	return loader.Load(ctx, o.loadOptions())
}

func (o *options) newMatrix(doc *source.Document, encoded string) *matrix.Matrix {
	t := doc.Table()
	o.logger.Debug("table ready", "source", doc.Source, "version", doc.Version, "rows", t.Len())
	return matrix.New(t, choice.NewCatalog(t),
		matrix.WithLogger(o.logger),
		matrix.WithGrammar(o.grammar),
		matrix.WithEncodedPatch(encoded),
	)
}

func (o *options) readBaseConfig() ([]byte, error) {
	if o.baseConfig == "" {
		return nil, nil
	}
	data, err := os.ReadFile(o.baseConfig)
	if err != nil {
		return nil, fmt.Errorf("reading base config: %w", err)
	}
	return data, nil
}

// print writes value as indented JSON or through text.
func (o *options) print(cmd *cobra.Command, value any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if o.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	text(w)
	return nil
}
