// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	summaryFile  = "summary.md"
	metadataFile = "metadata.yaml"
)

// archive keeps the Markdown summary and merged metadata under
// root/<name>/. Existing files are replaced.
func archive(root, name string, meta types.DocumentMetadata, markdown string) error {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, summaryFile), []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}
