// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			source:   "A *novel* approach",
			contains: []string{"<em>novel</em>"},
		},
		{
			name:     "heading gets id",
			source:   "## Results",
			contains: []string{`<h2 id="results">Results</h2>`},
		},
		{
			name:     "gfm table",
			source:   "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "raw html is omitted",
			source:   "before <script>alert(1)</script> after",
			excludes: []string{"<script>"},
		},
		{
			name:     "autolink",
			source:   "see https://example.com",
			contains: []string{`<a href="https://example.com">`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.False(t, strings.Contains(got, s), "unexpected %q in %q", s, got)
			}
		})
	}
}

func TestToHTMLEmpty(t *testing.T) {
	got, err := ToHTML("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
