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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidRecord indicates an EmbeddingRecord failed validation.
	ErrInvalidRecord = errors.New("invalid embedding record")

	// ErrEmptyDocumentID indicates the document Id field is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptySourceURL indicates the SourceURL field is empty.
	ErrEmptySourceURL = errors.New("source url cannot be empty")

	// ErrInvalidStatus indicates an invalid ProcessingStatus value.
	ErrInvalidStatus = errors.New("invalid processing status")

	// ErrEmptyVector indicates an embedding record with no vector.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrNegativePageIndex indicates a payload with a page index below zero.
	ErrNegativePageIndex = errors.New("page index cannot be negative")
)
