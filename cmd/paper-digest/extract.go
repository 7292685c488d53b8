// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/tei"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file.tei.xml]",
	Short: "Print the sections and metadata extracted from a TEI file",
	Long: `Extract reads a GROBID TEI document and prints the document metadata and
the ordered section sequence that a summarization job would index.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("format", "yaml", "output format (yaml or json)")
	extractCmd.Flags().Bool("abstract", false, "include the abstract in the metadata")

	rootCmd.AddCommand(extractCmd)
}

// extraction is the printed form of one TEI document.
type extraction struct {
	Metadata *types.DocumentMetadata `json:"metadata" yaml:"metadata"`
	Sections []types.Section         `json:"sections" yaml:"sections"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts := tei.OptionsFrom(cfg.Extraction)
	if abstract, _ := cmd.Flags().GetBool("abstract"); abstract {
		opts.IncludeAbstract = true
	}

	sections, meta, err := tei.ExtractFile(args[0], opts)
	if err != nil {
		return err
	}
	out := extraction{Metadata: meta, Sections: sections}

	switch format, _ := cmd.Flags().GetString("format"); format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
