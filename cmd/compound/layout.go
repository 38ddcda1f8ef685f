package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/hupe1980/compound/schema"
	"github.com/spf13/cobra"
)

var layoutFormat string

// layoutCmd prints a committed layout
var layoutCmd = &cobra.Command{
	Use:   "layout <layout.json>",
	Short: "Validate and print a record layout",
	Long: `Load a committed record layout, build its record codec and print the
result.

Formats:
  text   one line per member with offset, size and storage class
  json   the layout document as committed by the codec

Example:
  compound layout row.json --format text`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		rec, err := s.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		switch layoutFormat {
		case "json":
			return writeJSON(cmd, rec.Layout(), true)
		case "text", "":
			return printLayout(cmd, rec.Layout())
		default:
			return fmt.Errorf("unknown format %q", layoutFormat)
		}
	},
}

func printLayout(cmd *cobra.Command, l schema.Layout) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, l.String())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tOFFSET\tSIZE\tCLASS\tDIMS")
	for _, m := range l.Members {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%v\n", m.Name, m.Offset, m.Storage.ByteSize(), m.Storage.Class, m.Storage.Dims)
	}
	return w.Flush()
}

func init() {
	layoutCmd.Flags().StringVarP(&layoutFormat, "format", "f", "text", "Output format (text, json)")
}
