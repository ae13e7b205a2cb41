package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "bytes", bytes: 512, expected: "512 B"},
		{name: "kilobytes", bytes: 2048, expected: "2.0 KB"},
		{name: "megabytes", bytes: 5 * 1024 * 1024, expected: "5.0 MB"},
		{name: "gigabytes", bytes: 3 * 1024 * 1024 * 1024, expected: "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatBytes(tt.bytes))
		})
	}
}

func Test_TruncateForDisplay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "short string untouched", input: "abc", maxLen: 10, expected: "abc"},
		{name: "exact length untouched", input: "abcdefghij", maxLen: 10, expected: "abcdefghij"},
		{name: "long string truncated", input: "abcdefghijk", maxLen: 10, expected: "abcdefg..."},
		{name: "tiny max returns input", input: "abcdef", maxLen: 3, expected: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, TruncateForDisplay(tt.input, tt.maxLen))
		})
	}
}
