package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hupe1980/compound/codec"
	"github.com/hupe1980/compound/member"
	"github.com/spf13/cobra"
)

var (
	decodeEnumAs       string
	decodeDurationUnit string
)

// decodeCmd converts hex records to JSON
var decodeCmd = &cobra.Command{
	Use:   "decode <layout.json> [hex...]",
	Short: "Decode binary records into JSON",
	Long: `Decode hex-encoded records with the record codec of a layout and print
each as a JSON object. Records are read from stdin, one per line, when none
are given as arguments. A hex string holding several consecutive records is
split at the record size.

Example:
  compound decode row.json 0700000068656c6c6f00000002 --enum-as name`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ro, err := decodeOptions()
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		rec, err := s.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		inputs := args[1:]
		if len(inputs) == 0 {
			data, err := readInput("-")
			if err != nil {
				return err
			}
			sc := bufio.NewScanner(bytes.NewReader(data))
			for sc.Scan() {
				if line := strings.TrimSpace(sc.Text()); line != "" {
					inputs = append(inputs, line)
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}
		}

		for _, in := range inputs {
			data, err := hex.DecodeString(in)
			if err != nil {
				return fmt.Errorf("invalid hex %q: %w", in, err)
			}
			var out []map[string]any
			if err := rec.DecodeBatch(data, &out, ro...); err != nil {
				return err
			}
			for _, m := range out {
				if err := writeJSON(cmd, m, false); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func decodeOptions() ([]codec.ReadOption, error) {
	var ro []codec.ReadOption
	switch decodeEnumAs {
	case "name", "":
		ro = append(ro, codec.EnumAs(member.EnumAsName))
	case "ordinal":
		ro = append(ro, codec.EnumAs(member.EnumAsOrdinal))
	default:
		return nil, fmt.Errorf("unknown enum shape %q (want name or ordinal)", decodeEnumAs)
	}
	if decodeDurationUnit != "" {
		u, err := member.ParseTimeUnit(decodeDurationUnit)
		if err != nil {
			return nil, err
		}
		ro = append(ro, codec.DurationUnit(u))
	}
	return ro, nil
}

func init() {
	decodeCmd.Flags().StringVar(&decodeEnumAs, "enum-as", "name", "Enumeration shape (name, ordinal)")
	decodeCmd.Flags().StringVar(&decodeDurationUnit, "duration-unit", "", "Convert durations to this unit (seconds, hours, ...)")
}
