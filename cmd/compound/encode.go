package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var encodeJoined bool

// encodeCmd converts JSON records to hex
var encodeCmd = &cobra.Command{
	Use:   "encode <layout.json> [records.json]",
	Short: "Encode JSON records into their binary form",
	Long: `Encode a JSON object, or an array of objects, with the record codec of a
layout and print every record as hex, one per line. Records are read from
stdin when no file is given or the file is "-".

Enumeration members accept their symbolic names.

Example:
  echo '{"id":7,"label":"hello","flags":"WRITE"}' | compound encode row.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		rec, err := s.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		in := "-"
		if len(args) == 2 {
			in = args[1]
		}
		data, err := readInput(in)
		if err != nil {
			return err
		}
		records, err := readRecords(data)
		if err != nil {
			return err
		}

		buf, err := rec.EncodeBatch(records)
		if err != nil {
			return err
		}

		if n := s.heap.Len(); n > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: %d variable-length payloads are only resolvable in this process\n", n)
		}

		out := cmd.OutOrStdout()
		if encodeJoined {
			_, err = fmt.Fprintln(out, hex.EncodeToString(buf))
			return err
		}
		size := rec.Size()
		for i := range records {
			if _, err := fmt.Fprintln(out, hex.EncodeToString(buf[i*size:(i+1)*size])); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	encodeCmd.Flags().BoolVar(&encodeJoined, "joined", false, "Print all records as one contiguous hex string")
}
