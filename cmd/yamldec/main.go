// Command yamldec decodes YAML documents and prints them as JSON, one
// object per document. Input comes from file arguments or stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftware/drift-yaml/pkg/yaml"
)

var (
	docIndex int
	skipBad  bool
)

var rootCmd = &cobra.Command{
	Use:   "yamldec [files...]",
	Short: "Decode YAML to JSON",
	Long: `yamldec decodes YAML streams and prints each document as indented JSON.
With no file arguments it reads from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			return decodeStream(string(data))
		}
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if err := decodeStream(string(data)); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
	SilenceUsage: true,
}

func decodeStream(input string) error {
	d := yaml.NewDecoder(input)
	if skipBad {
		d.SkipBadDocuments()
	}
	for i := 0; ; i++ {
		v, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if docIndex >= 0 && i != docIndex {
			continue
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding document %d: %w", i, err)
		}
		fmt.Println(string(out))
		if docIndex >= 0 {
			return nil
		}
	}
}

func main() {
	rootCmd.Flags().IntVar(&docIndex, "doc", -1, "print only the document at this index (0-based)")
	rootCmd.Flags().BoolVar(&skipBad, "skip-bad", false, "skip documents that fail to decode")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
