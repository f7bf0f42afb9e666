// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/storage"
)

// StatusTracker commits processing status transitions for a document.
// Each ingestion run commits exactly one terminal status through Complete.
type StatusTracker struct {
	documents storage.DocumentRepository
	logger    *slog.Logger
}

// NewStatusTracker creates a status tracker over the given repository.
func NewStatusTracker(documents storage.DocumentRepository, logger *slog.Logger) (*StatusTracker, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusTracker{
		documents: documents,
		logger:    logger.With("component", "statustracker"),
	}, nil
}

// Begin marks the document as PROCESSING. Calling Begin on a document that
// is already PROCESSING is a no-op, so a retried run does not observe its
// own transition as a conflict. A document that does not exist is a fatal
// condition and no status is written.
func (t *StatusTracker) Begin(ctx context.Context, documentID string) error {
	document, err := t.documents.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if document.Status == core.StatusProcessing {
		t.logger.Debug("document already processing", "documentId", documentID)
		return nil
	}
	return t.documents.SetStatus(ctx, documentID, core.StatusProcessing)
}

// Complete commits the terminal outcome of a run. Only SUCCESS and FAILED
// are accepted.
func (t *StatusTracker) Complete(ctx context.Context, documentID string, outcome core.ProcessingStatus) error {
	if !outcome.Terminal() {
		return fmt.Errorf("%w: %s", ErrNotTerminal, outcome)
	}
	if err := t.documents.SetStatus(ctx, documentID, outcome); err != nil {
		return err
	}
	t.logger.Debug("committed terminal status", "documentId", documentID, "status", outcome.String())
	return nil
}
