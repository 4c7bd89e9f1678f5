package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/Neumenon/plait/plait"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var streamLog = commonlog.GetLogger("plait.stream")

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream [file]",
		Short: "Decode a chunk-delimited PLAIT stream",
		Long: `Read |id|-delimited PLAIT chunks and print one JSON object per
completed chunk as it arrives. Malformed chunks are reported and
skipped; the stream keeps going.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if len(args) > 0 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()

			sp := plait.NewStreamParser(func(ev plait.StreamEvent) error {
				switch ev.Type {
				case plait.StreamChunk:
					iv, err := plait.ToJSONValue(ev.Value)
					if err != nil {
						return err
					}
					data, err := json.Marshal(map[string]interface{}{
						"id":    ev.ID,
						"value": iv,
					})
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(data))
					return out.Flush()
				case plait.StreamError:
					streamLog.Errorf("%s", ev.Err)
				case plait.StreamEnd:
					streamLog.Info("stream ended")
				}
				return nil
			})

			buf := make([]byte, 4096)
			for {
				n, err := in.Read(buf)
				if n > 0 {
					if werr := sp.Write(string(buf[:n])); werr != nil {
						return werr
					}
				}
				if err != nil {
					break
				}
			}
			return sp.End()
		},
	}
	return cmd
}
