// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grobid converts PDFs to TEI XML with GROBID, either by running the
// batch jar as a subprocess or by calling a GROBID server.
package grobid

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Processor turns <dir>/<name>.pdf into <dir>/<name>.tei.xml and returns the
// TEI path. Any failure, including a run that leaves no output, is
// types.ErrStructuralExtraction.
type Processor interface {
	Process(ctx context.Context, dir, name string) (string, error)
}

// New returns the processor selected by cfg.Mode.
func New(cfg types.GrobidConfig, httpClient *http.Client, logger *log.Logger) (Processor, error) {
	logger = logging.Or(logger)
	switch cfg.Mode {
	case types.GrobidCLI, "":
		return &CLI{cfg: cfg, exec: defaultExec, logger: logger}, nil
	case types.GrobidService:
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("%w: grobid.service_url is required in service mode", types.ErrConfiguration)
		}
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Timeout}
		}
		return &Service{cfg: cfg, http: httpClient, logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: unknown grobid mode %q", types.ErrConfiguration, cfg.Mode)
	}
}

// TEIPath is where both processors write the TEI for <dir>/<name>.pdf.
func TEIPath(dir, name string) string {
	return filepath.Join(dir, name+".tei.xml")
}

func checkOutput(dir, name string) (string, error) {
	path := TEIPath(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: grobid produced no output at %s", types.ErrStructuralExtraction, path)
	}
	return path, nil
}
