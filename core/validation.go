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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must not be empty (it is also the index namespace)
//   - SourceURL must not be empty
//   - Status must be a known ProcessingStatus value
//
// NOT validated:
//   - Name and StorageKey (informational, supplied by the upload transport)
//   - OwnerId (empty means unowned; access control lives outside this core)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	if doc.SourceURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySourceURL)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - Vector must not be empty
//   - Payload.DocumentId must not be empty
//   - Payload.PageIndex must not be negative
//
// Payload.Text is NOT validated: blank pages embed the empty string so the
// page index alignment between pages and records stays exact.
func ValidateRecord(record *EmbeddingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyVector)
	}

	if record.Payload.DocumentId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyDocumentID)
	}

	if record.Payload.PageIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrNegativePageIndex)
	}

	return nil
}

// ValidateStatus validates that a ProcessingStatus has a known value.
func ValidateStatus(status ProcessingStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusSuccess, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}
