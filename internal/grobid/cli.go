// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grobid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = osExecutor{}

// CLI runs GROBID's batch processFullText over a directory. Every PDF in the
// directory is processed, so each job uses its own directory.
type CLI struct {
	cfg    types.GrobidConfig
	exec   executor
	logger *log.Logger
}

// Args returns the java command line for one directory.
func (c *CLI) Args(dir string) []string {
	heap := c.cfg.Heap
	if heap == "" {
		heap = "4G"
	}
	return []string{
		"-Xmx" + heap,
		"-jar", c.cfg.Jar,
		"-gH", c.cfg.Home,
		"-dIn", dir,
		"-dOut", dir,
		"-exe", "processFullText",
	}
}

// Process runs the jar and checks that the TEI file was written.
func (c *CLI) Process(ctx context.Context, dir, name string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	bin := c.cfg.JavaBin
	if bin == "" {
		bin = "java"
	}

	var stderr bytes.Buffer
	c.logger.Info().Str("dir", dir).Msg("running grobid")
	if err := c.exec.Run(ctx, bin, c.Args(dir), io.Discard, &stderr); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 500 {
			msg = msg[len(msg)-500:]
		}
		return "", fmt.Errorf("%w: grobid: %v: %s", types.ErrStructuralExtraction, err, msg)
	}
	return checkOutput(dir, name)
}
