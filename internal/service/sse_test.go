package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContentFromChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  string
	}{
		{
			"well-formed delta",
			`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
			"Hello",
		},
		{
			"no data prefix",
			`{"choices":[{"delta":{"content":"Hi"}}]}`,
			"Hi",
		},
		{
			"done sentinel",
			"data: [DONE]",
			"",
		},
		{
			"blank line",
			"",
			"",
		},
		{
			"whitespace only",
			"data:   ",
			"",
		},
		{
			"missing delta marker",
			`data: {"choices":[{"message":{"content":"Hi"}}]}`,
			"",
		},
		{
			"missing content marker",
			`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
			"",
		},
		{
			"empty content",
			`data: {"choices":[{"delta":{"content":""}}]}`,
			"",
		},
		{
			"escaped newline",
			`data: {"choices":[{"delta":{"content":"line one\nline two"}}]}`,
			"line one\nline two",
		},
		{
			"escaped tab",
			`data: {"choices":[{"delta":{"content":"a\tb"}}]}`,
			"a\tb",
		},
		{
			"escaped quote",
			`data: {"choices":[{"delta":{"content":"say \"hi\""}}]}`,
			`say "hi"`,
		},
		{
			"escaped backslash",
			`data: {"choices":[{"delta":{"content":"a\\b"}}]}`,
			`a\b`,
		},
		{
			"truncated chunk",
			`data: {"choices":[{"delta":{"content":"unterminat`,
			"",
		},
		{
			"not json at all",
			"data: garbage",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractContentFromChunk(tt.chunk))
		})
	}
}

func TestFindClosingQuote(t *testing.T) {
	assert.Equal(t, 5, findClosingQuote(`hello"`, 0))
	assert.Equal(t, -1, findClosingQuote(`hello`, 0))
	// escaped quote is skipped
	assert.Equal(t, 4, findClosingQuote(`a\"b"`, 0))
}
