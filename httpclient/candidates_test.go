package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateBases(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		want    []string
	}{
		{
			name:    "given localhost:4000, then sweeps 4001..4005",
			initial: "http://localhost:4000",
			want: []string{
				"http://localhost:4000",
				"http://localhost:4001",
				"http://localhost:4002",
				"http://localhost:4003",
				"http://localhost:4004",
				"http://localhost:4005",
			},
		},
		{
			name:    "given 127.0.0.1:4000 with path, then keeps scheme and path",
			initial: "https://127.0.0.1:4000/api",
			want: []string{
				"https://127.0.0.1:4000/api",
				"https://127.0.0.1:4001/api",
				"https://127.0.0.1:4002/api",
				"https://127.0.0.1:4003/api",
				"https://127.0.0.1:4004/api",
				"https://127.0.0.1:4005/api",
			},
		},
		{
			name:    "given localhost on another port, then single candidate",
			initial: "http://localhost:4002",
			want:    []string{"http://localhost:4002"},
		},
		{
			name:    "given localhost without port, then single candidate",
			initial: "http://localhost",
			want:    []string{"http://localhost"},
		},
		{
			name:    "given remote host on port 4000, then single candidate",
			initial: "http://api.example.com:4000",
			want:    []string{"http://api.example.com:4000"},
		},
		{
			name:    "given unparsable base, then single candidate",
			initial: "http://[::1",
			want:    []string{"http://[::1"},
		},
		{
			name:    "given empty base, then single empty candidate",
			initial: "",
			want:    []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, candidateBases(tt.initial))
		})
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{
			name: "given base without slash, then concatenates",
			base: "http://api.test",
			path: "/articles",
			want: "http://api.test/articles",
		},
		{
			name: "given base with trailing slash, then no double slash",
			base: "http://api.test/",
			path: "/articles",
			want: "http://api.test/articles",
		},
		{
			name: "given base with path prefix, then keeps prefix",
			base: "http://api.test/v1",
			path: "/articles?limit=5",
			want: "http://api.test/v1/articles?limit=5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinURL(tt.base, tt.path))
		})
	}
}
