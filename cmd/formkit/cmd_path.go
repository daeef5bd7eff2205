package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/formkit"
	"github.com/reoring/formkit/fieldpath"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [path]...",
		Short: "Parse field paths and print their segments",
		Long: `Prints one line per path: the rendered path, its canonical registry key
and its segments as JSON (strings are keys, numbers are indices).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, s := range args {
				p, err := fieldpath.Parse(s)
				if err != nil {
					return err
				}
				segs := make([]any, len(p))
				for i, seg := range p {
					if n, ok := seg.Index(); ok && seg.IsIndex() {
						segs[i] = n
					} else {
						segs[i] = seg.Key()
					}
				}
				b, err := json.Marshal(segs)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", fieldpath.Render(p), fieldpath.Canonical(p), b)
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "get [path]",
		Short: "Print the value at a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := fieldpath.Parse(args[0])
			if err != nil {
				return err
			}
			tree, f, err := loadData(dataFile)
			if err != nil {
				return err
			}
			v, ok := fieldpath.Lookup(tree, p)
			if !ok {
				return fmt.Errorf("%s: no value at %s", dataFile, fieldpath.Render(p))
			}
			return writeValue(cmd.OutOrStdout(), v, f)
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML data file")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newSetCmd() *cobra.Command {
	var (
		dataFile string
		raw      bool
		inPlace  bool
	)
	cmd := &cobra.Command{
		Use:   "set [path] [value]",
		Short: "Write a value at a path and print the resulting data",
		Long: `The value is read as JSON ({"city":"Arkham"}, 3, true); anything that is
not valid JSON, or every value with --raw, is stored as a string. Missing
intermediate objects and arrays are created.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := fieldpath.Parse(args[0])
			if err != nil {
				return err
			}
			tree, f, err := loadData(dataFile)
			if err != nil {
				return err
			}
			store := formkit.New(formkit.Config{InitialData: tree, Logger: logger})
			field, err := store.RegisterField(p)
			if err != nil {
				return err
			}
			if err := field.SetValue(parseValue(args[1], raw)); err != nil {
				return err
			}
			logger.Debug("value set", zap.String("path", field.StringPath()), zap.Bool("dirty", field.IsDirty()))

			b, err := encode(store.Data(), f)
			if err != nil {
				return err
			}
			if inPlace {
				return os.WriteFile(dataFile, b, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML data file")
	cmd.Flags().BoolVar(&raw, "raw", false, "store the value as a string")
	cmd.Flags().BoolVarP(&inPlace, "write", "w", false, "write the result back to the data file")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
