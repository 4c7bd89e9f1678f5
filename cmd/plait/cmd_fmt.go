package main

import (
	"fmt"
	"os"

	"github.com/Neumenon/plait/plait"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var fmtLog = commonlog.GetLogger("plait.fmt")

func newFmtCmd() *cobra.Command {
	var (
		overwrite bool
		sortKeys  bool
		compact   bool
		url       string
	)

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Reformat a PLAIT document canonically",
		Long: `Decode a PLAIT document and re-encode it in canonical form.

If no file is provided, reads from stdin. Use -w to overwrite the
file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filename string
			if len(args) > 0 {
				filename = args[0]
			}
			if overwrite && filename == "" {
				return fmt.Errorf("-w requires a file argument")
			}

			source, err := readInput(filename, url)
			if err != nil {
				return err
			}

			v, err := plait.Decode(string(source))
			if err != nil {
				return err
			}

			opts := plait.DefaultEmitOptions()
			opts.SortKeys = sortKeys
			opts.Compact = compact
			text, err := plait.EmitWithOptions(v, opts)
			if err != nil {
				return err
			}

			if overwrite {
				if err := os.WriteFile(filename, []byte(text+"\n"), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", filename, err)
				}
				fmtLog.Infof("rewrote %s", filename)
				return nil
			}
			fmt.Println(text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "write", "w", false, "overwrite the input file")
	cmd.Flags().BoolVar(&sortKeys, "sort-keys", false, "sort record keys")
	cmd.Flags().BoolVar(&compact, "compact", false, "render small records inline")
	cmd.Flags().StringVar(&url, "url", "", "fetch the document from a URL")
	return cmd
}
