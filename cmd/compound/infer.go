package main

import (
	"errors"

	"github.com/hupe1980/compound"
	"github.com/spf13/cobra"
)

var inferOrder []string

// inferCmd derives a layout from a sample record
var inferCmd = &cobra.Command{
	Use:   "infer <name> <sample.json>",
	Short: "Infer a record layout from a JSON sample",
	Long: `Infer a record layout from the first JSON object in a sample file and
print it as a layout document.

Integral numbers become 64-bit integers, other numbers 64-bit floats, and
strings fixed-length strings sized to the sample. Members are ordered by
name unless --order lists them.

Example:
  compound infer point sample.json --order x,y,label > point.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		data, err := readInput(args[1])
		if err != nil {
			return err
		}
		records, err := readRecords(data)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return errors.New("sample holds no records")
		}

		rec, err := s.reg.ForMap(cmd.Context(), args[0], records[0], compound.Strict, inferOrder...)
		if err != nil {
			return err
		}
		return writeJSON(cmd, rec.Layout(), true)
	},
}

func init() {
	inferCmd.Flags().StringSliceVar(&inferOrder, "order", nil, "Member order (comma separated)")
}
