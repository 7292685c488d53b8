// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grobid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// serviceRetryDelay is the wait after a 503, which GROBID returns when all
// its workers are busy.
var serviceRetryDelay = 5 * time.Second

// Service posts the PDF to a GROBID server's processFulltextDocument endpoint.
type Service struct {
	cfg    types.GrobidConfig
	http   *http.Client
	logger *log.Logger
}

// Process uploads <dir>/<name>.pdf and writes the returned TEI next to it.
func (s *Service) Process(ctx context.Context, dir, name string) (string, error) {
	pdf, err := os.ReadFile(filepath.Join(dir, name+".pdf"))
	if err != nil {
		return "", fmt.Errorf("%w: reading pdf: %v", types.ErrStructuralExtraction, err)
	}

	endpoint := strings.TrimSuffix(s.cfg.ServiceURL, "/") + "/api/processFulltextDocument"
	var tei []byte
	err = httputil.Retry(ctx, 3, serviceRetryDelay, func(ctx context.Context) error {
		body, contentType, err := multipartBody(name+".pdf", pdf)
		if err != nil {
			return httputil.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if err != nil {
			return httputil.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/xml")

		resp, err := s.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusServiceUnavailable:
			return fmt.Errorf("grobid busy (HTTP 503)")
		case resp.StatusCode != http.StatusOK:
			return httputil.Permanent(fmt.Errorf("grobid returned HTTP %d", resp.StatusCode))
		}
		tei, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrStructuralExtraction, err)
	}

	if err := os.WriteFile(TEIPath(dir, name), tei, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing tei: %v", types.ErrStructuralExtraction, err)
	}
	s.logger.Debug().Str("file", TEIPath(dir, name)).Int("bytes", len(tei)).Msg("grobid service done")
	return checkOutput(dir, name)
}

func multipartBody(filename string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("input", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("consolidateHeader", "1"); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
