// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error taxonomy for the pipeline. Producers wrap these with fmt.Errorf and
// %w so callers can classify failures with errors.Is.
var (
	// ErrStructuralExtraction means the TEI header or body could not be
	// located, the XML was unparsable, or GROBID produced no output.
	ErrStructuralExtraction = errors.New("structural extraction failure")

	// ErrIndexBuild means the per-document index could not be built.
	ErrIndexBuild = errors.New("index build failure")

	// ErrSectionQuery means a single section query failed. The assembler
	// recovers from it locally.
	ErrSectionQuery = errors.New("section query failure")

	// ErrExternalService means a paper source, page publisher or messaging
	// call failed after exhausting its retries.
	ErrExternalService = errors.New("external service failure")

	// ErrConfiguration means a required setting or credential is missing.
	ErrConfiguration = errors.New("configuration error")

	// ErrJobInProgress means another job already holds the document lock.
	ErrJobInProgress = errors.New("job already in progress for this document")

	// ErrNoContent means no section produced a summary.
	ErrNoContent = errors.New("no section summaries were produced")
)
