package webfetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Rendering needs a Chrome binary, so tests stick to the pure parts.

func TestTableNameFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "last path segment without extension",
			url:  "https://example.com/reports/daily-prices.html",
			want: "daily-prices",
		},
		{
			name: "bare root falls back to host",
			url:  "https://example.com/",
			want: "example.com",
		},
		{
			name: "no path falls back to host",
			url:  "https://example.com",
			want: "example.com",
		},
		{
			name: "query string ignored",
			url:  "https://example.com/data?page=2",
			want: "data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TableNameFromURL(tt.url))
		})
	}
}

func TestFetcherDefaults(t *testing.T) {
	f := NewFetcher(nil)
	assert.Equal(t, DefaultTimeout, f.timeout)
	assert.True(t, f.headless)

	f = f.WithTimeout(DefaultTimeout / 2).WithHeadless(false)
	assert.Equal(t, DefaultTimeout/2, f.timeout)
	assert.False(t, f.headless)
}
