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


// Package extract splits a PDF document's raw bytes into an ordered
// sequence of page-level text units.
//
// A document with zero extractable pages is not an error; it yields an
// empty sequence. A page without text yields an empty string at its index
// rather than being skipped, so page indices always line up with source
// order.
package extract

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/poiesic/docdex/core"
)

// Extractor parses PDF bytes into pages.
type Extractor struct {
	conf   *model.Configuration
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) (*Extractor, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	e := &Extractor{
		conf:   conf,
		logger: slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Open validates the document and returns a lazy iterator over its pages.
// Pages are extracted one at a time as the iterator advances; Reset rewinds
// it to the first page.
func (e *Extractor) Open(documentID string, data []byte) (*PageIterator, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	// Structural gate first: the text parser below assumes a well-formed
	// cross-reference table and object graph.
	if err := api.Validate(bytes.NewReader(data), e.conf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	e.logger.Debug("opened document", "documentId", documentID, "pages", reader.NumPage())

	return &PageIterator{
		documentID: documentID,
		reader:     reader,
		next:       1, // pdf page numbers are 1-based
	}, nil
}

// Extract validates the document and returns all of its pages in source
// order. It is the materialized form of Open.
func (e *Extractor) Extract(documentID string, data []byte) ([]core.Page, error) {
	it, err := e.Open(documentID, data)
	if err != nil {
		return nil, err
	}

	pages := make([]core.Page, 0, it.Len())
	for it.Next() {
		pages = append(pages, it.Page())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

// PageIterator iterates over a document's pages in source order.
// The usage pattern follows bufio.Scanner: Next advances, Page returns the
// current page, Err reports the first extraction failure.
type PageIterator struct {
	documentID string
	reader     *pdf.Reader
	next       int // 1-based number of the page Next will produce
	current    core.Page
	err        error
}

// Len returns the total number of pages in the document.
func (it *PageIterator) Len() int {
	return it.reader.NumPage()
}

// Next advances to the next page. It returns false when the sequence is
// exhausted or a page fails to extract; Err distinguishes the two.
func (it *PageIterator) Next() bool {
	if it.err != nil || it.next > it.reader.NumPage() {
		return false
	}

	text, err := it.pageText(it.next)
	if err != nil {
		it.err = fmt.Errorf("%w: page %d: %w", ErrMalformedDocument, it.next-1, err)
		return false
	}

	it.current = core.Page{
		DocumentId: it.documentID,
		Index:      it.next - 1, // pages are exposed zero-based
		Text:       text,
	}
	it.next++
	return true
}

// Page returns the page produced by the last successful Next.
func (it *PageIterator) Page() core.Page {
	return it.current
}

// Err returns the first error encountered during iteration, if any.
func (it *PageIterator) Err() error {
	return it.err
}

// Reset rewinds the iterator to the first page.
func (it *PageIterator) Reset() {
	it.next = 1
	it.current = core.Page{}
	it.err = nil
}

// pageText extracts the plain text of one page. The underlying parser
// panics on some malformed content streams, so the panic is converted to
// an error here instead of taking down the whole run.
func (it *PageIterator) pageText(pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream parse panic: %v", r)
		}
	}()

	page := it.reader.Page(pageNum)
	if page.V.IsNull() {
		// Missing page object; keep the slot so indices stay aligned.
		return "", nil
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return text, nil
}
