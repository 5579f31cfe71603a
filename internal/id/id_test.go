package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRowID(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "row-0"},
		{7, "row-7"},
		{123, "row-123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRowID(tt.index))
	}
}

func TestParseRowID(t *testing.T) {
	n, err := ParseRowID("row-42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = ParseRowID("row-1700000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), n)
}

func TestParseRowID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"row-",
		"42",
		"row-abc",
		"row--1",
	}
	for _, input := range badInputs {
		_, err := ParseRowID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestGenerator_Unique(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := NewGenerator(func() time.Time { return fixed })

	a := g.Next()
	b := g.Next()
	c := g.Next()
	assert.Equal(t, "row-1700000000000", a)
	assert.Equal(t, "row-1700000000001", b)
	assert.Equal(t, "row-1700000000002", c)
}

func TestGenerator_SkipsReserved(t *testing.T) {
	fixed := time.UnixMilli(5)
	g := NewGenerator(func() time.Time { return fixed })
	g.Reserve("row-5", "row-6")

	assert.Equal(t, "row-7", g.Next())
}
