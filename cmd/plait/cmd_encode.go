package main

import (
	"fmt"

	"github.com/Neumenon/plait/plait"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var encodeLog = commonlog.GetLogger("plait.encode")

func newEncodeCmd() *cobra.Command {
	var (
		from     string
		sortKeys bool
		compact  bool
		url      string
	)

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Convert JSON or YAML to PLAIT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filename string
			if len(args) > 0 {
				filename = args[0]
			}
			source, err := readInput(filename, url)
			if err != nil {
				return err
			}

			var v *plait.Value
			switch from {
			case "json":
				v, err = plait.FromJSON(source)
			case "yaml":
				v, err = plait.FromYAML(source)
			default:
				return fmt.Errorf("unknown input format %q (want json or yaml)", from)
			}
			if err != nil {
				return err
			}
			encodeLog.Debugf("decoded %d bytes of %s", len(source), from)

			opts := plait.DefaultEmitOptions()
			opts.SortKeys = sortKeys
			opts.Compact = compact
			text, err := plait.EmitWithOptions(v, opts)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "json", "input format: json or yaml")
	cmd.Flags().BoolVar(&sortKeys, "sort-keys", false, "sort record keys")
	cmd.Flags().BoolVar(&compact, "compact", false, "render small records inline")
	cmd.Flags().StringVar(&url, "url", "", "fetch the document from a URL")
	return cmd
}
