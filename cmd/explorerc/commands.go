package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/effectus/explorer/matrix"
	"github.com/effectus/explorer/patch"
	"github.com/effectus/explorer/render"
	"github.com/effectus/explorer/source"
)

type resolveOutput struct {
	Patch    string          `json:"patch"`
	Settings matrix.Settings `json:"settings"`
	View     *render.View    `json:"view,omitempty"`
	Config   json.RawMessage `json:"config,omitempty"`
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [patch]",
		Short: "Resolve a patch to its constrained settings and selected row",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.loadDocument(cmd.Context())
			if err != nil {
				return err
			}
			return opts.resolve(cmd, doc, firstArg(args))
		},
	}
}

func (o *options) resolve(cmd *cobra.Command, doc *source.Document, encoded string) error {
	m := o.newMatrix(doc, encoded)
	out := resolveOutput{Patch: m.Encode(), Settings: m.ConstrainedSettings()}

	if view, ok := render.NewView(m, render.Options{IDColumn: o.idColumn}); ok {
		out.View = &view
		base, err := o.readBaseConfig()
		if err != nil {
			return err
		}
		if base != nil {
			config, err := view.Config(base)
			if err != nil {
				return err
			}
			out.Config = config
		}
	}

	return o.print(cmd, out, func(w io.Writer) {
		for _, name := range m.Catalog().Names() {
			fmt.Fprintf(w, "%s: %s\n", name, out.Settings[name])
		}
		if out.View == nil {
			fmt.Fprintln(w, "row: none")
			return
		}
		fmt.Fprintf(w, "row: %d\n", out.View.Row)
		if out.View.ID != "" {
			fmt.Fprintf(w, "id: %s\n", out.View.ID)
		}
		for _, column := range sortedKeys(out.View.Overrides) {
			fmt.Fprintf(w, "  %s = %s\n", column, out.View.Overrides[column])
		}
		if out.Config != nil {
			fmt.Fprintf(w, "config: %s\n", out.Config)
		}
	})
}

func newChoicesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "choices [patch]",
		Short: "List every choice with its options and their availability",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.loadDocument(cmd.Context())
			if err != nil {
				return err
			}
			choices := opts.newMatrix(doc, firstArg(args)).ChoicesWithAvailability()
			return opts.print(cmd, choices, func(w io.Writer) {
				for _, c := range choices {
					fmt.Fprintf(w, "%s (%s): %s\n", c.DisplayName, c.ControlType, c.Value)
					for _, option := range c.Options {
						mark := " "
						if option.Checked {
							mark = "x"
						}
						suffix := ""
						if !option.Available {
							suffix = " (unavailable)"
						}
						fmt.Fprintf(w, "  [%s] %s%s\n", mark, option.Label, suffix)
					}
				}
			})
		},
	}
}

type setOutput struct {
	Patch    string          `json:"patch"`
	Settings matrix.Settings `json:"settings"`
}

func newSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <patch> <choice=value>...",
		Short: "Apply choice changes to a patch and print the updated patch",
		Long: `set applies each choice=value in order, as a user clicking through the
selector would. An empty value clears the choice.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.loadDocument(cmd.Context())
			if err != nil {
				return err
			}
			m := opts.newMatrix(doc, args[0])
			for _, arg := range args[1:] {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid assignment %q: want choice=value", arg)
				}
				if !m.Catalog().Has(name) {
					opts.logger.Warn("ignoring unknown choice", "choice", name)
				}
				m.SetValue(name, value)
			}
			out := setOutput{Patch: m.Encode(), Settings: m.ConstrainedSettings()}
			return opts.print(cmd, out, func(w io.Writer) {
				fmt.Fprintln(w, out.Patch)
			})
		},
	}
}

func newEncodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <key=value>...",
		Short: "Encode key=value pairs as a patch; repeat a key for an array",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := patch.Patch{}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid pair %q: want key=value", arg)
				}
				values, _ := p.Values(key)
				p = p.Set(key, append(append([]string(nil), values...), value)...)
			}
			encoded := opts.grammar.Encode(p)
			return opts.print(cmd, map[string]string{"patch": encoded}, func(w io.Writer) {
				fmt.Fprintln(w, encoded)
			})
		},
	}
}

func newDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <patch>",
		Short: "Decode a patch into its keys and values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.grammar.Decode(args[0])
			return opts.print(cmd, p, func(w io.Writer) {
				for _, entry := range p {
					fmt.Fprintf(w, "%s\t%s\n", entry.Key, strings.Join(entry.Values, "\t"))
				}
			})
		},
	}
}

func newDecisionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decisions",
		Short: "Print the patch of every table row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.loadDocument(cmd.Context())
			if err != nil {
				return err
			}
			decisions := opts.newMatrix(doc, "").AllDecisionsEncoded()
			return opts.print(cmd, decisions, func(w io.Writer) {
				for _, encoded := range decisions {
					fmt.Fprintln(w, encoded)
				}
			})
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patch]",
		Short: "Re-resolve a patch every time the table file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.table == "" || strings.HasPrefix(opts.table, "s3://") {
				return fmt.Errorf("watch needs a local --table file")
			}
			w, err := source.NewWatcher(opts.table,
				source.WithWatchLogger(opts.logger),
				source.WithWatchLoadOptions(opts.loadOptions()),
			)
			if err != nil {
				return err
			}

			encoded := firstArg(args)
			return w.Run(cmd.Context(), func(doc *source.Document) {
				if err := opts.resolve(cmd, doc, encoded); err != nil {
					opts.logger.Error("resolve failed", "version", doc.Version, "error", err)
				}
			})
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
