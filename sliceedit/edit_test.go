package sliceedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferEditsUseOriginalOffsets(t *testing.T) {
	b := NewBuffer("import os:imp:")
	b.Delete(9, 14)
	b.Replace(0, 6, "from")
	assert.Equal(t, "from os", b.String())
}

func TestReplace(t *testing.T) {
	b := NewBuffer("{a} and {b}")
	b.Replace(8, 11, "two")
	b.Replace(0, 3, "one")
	assert.Equal(t, "one and two", b.String())
}

func TestNoEdits(t *testing.T) {
	assert.Equal(t, "unchanged", NewBuffer("unchanged").String())
}
