package main

import (
	"fmt"

	"github.com/Neumenon/plait/plait"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var (
		to     string
		pretty bool
		allow  bool
		strict bool
		url    string
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Convert PLAIT to JSON or YAML",
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

			opts := plait.DefaultParseOptions()
			opts.AllowDuplicateKeys = allow
			opts.Strict = strict
			v, err := plait.DecodeWithOptions(string(source), opts)
			if err != nil {
				return err
			}

			switch to {
			case "json":
				iv, err := plait.ToJSONValue(v)
				if err != nil {
					return err
				}
				var data []byte
				if pretty {
					data, err = json.MarshalIndent(iv, "", "  ")
				} else {
					data, err = json.Marshal(iv)
				}
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			case "yaml":
				data, err := plait.ToYAML(v)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
			default:
				return fmt.Errorf("unknown output format %q (want json or yaml)", to)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVar(&allow, "allow-duplicate-keys", false, "last duplicate key wins")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject table rows with extra cells")
	cmd.Flags().StringVar(&url, "url", "", "fetch the document from a URL")
	return cmd
}
