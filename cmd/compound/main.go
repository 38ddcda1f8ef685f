// Command compound inspects committed record layouts and converts records
// between JSON and their binary form.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd *cobra.Command

	logLevel  string
	codecName string
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "compound",
		Short: "Binary compound record codec tool",
		Long: `compound reads committed record layouts and converts records between
JSON objects and the fixed-size binary form the layout describes.

Layouts are JSON documents as produced by "compound infer" or exported by a
registry. Variable-length strings are kept in a process-local heap, so their
handles only resolve within one invocation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "go-json", "Layout codec (json, go-json)")

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
