// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache-2.0
// license that can be found in the LICENSE file.

// Package sliceedit extends the functionalities of rsc.io/edit to
// implement eficient buffered editing of source lines.
// Edits are expressed as offsets in the original text and applied in
// a single pass.
package sliceedit

import "rsc.io/edit"

// A Buffer is a queue of edits to apply to a given text.
type Buffer struct {
	ed *edit.Buffer
}

// NewBuffer returns a new buffer to accumulate changes to the text s.
func NewBuffer(s string) *Buffer {
	return &Buffer{ed: edit.NewBuffer([]byte(s))}
}

// Delete removes the text between start and end (offsets in the original text).
func (b *Buffer) Delete(start, end int) {
	b.ed.Delete(start, end)
}

// Replace replaces the text between start and end with text.
func (b *Buffer) Replace(start, end int, text string) {
	b.ed.Replace(start, end, text)
}

// String returns the original text with the queued edits applied.
func (b *Buffer) String() string {
	return b.ed.String()
}
