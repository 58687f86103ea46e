package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"charon", "backend"}, Tokenize("  Charon\tBACKEND "))
	assert.Empty(t, Tokenize("   "))
}

func TestMatchFolder(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		query      string
		want       Match
	}{
		{
			name:       "single token first hit wins",
			candidates: []string{"/r/ProjectAlpha", "/r/alpha-tools"},
			query:      "alpha",
			want:       Match{Path: "/r/ProjectAlpha", Score: 1, Exact: true},
		},
		{
			name:       "matches final segment only",
			candidates: []string{"/alpha/one", "/r/two-alpha"},
			query:      "alpha",
			want:       Match{Path: "/r/two-alpha", Score: 1, Exact: true},
		},
		{
			name:       "all tokens short-circuit",
			candidates: []string{"/r/Backend", "/r/Project Charon Backend", "/r/charon-backend-v2"},
			query:      "Charon Backend",
			want:       Match{Path: "/r/Project Charon Backend", Score: 2, Exact: true},
		},
		{
			name:       "all tokens beat earlier partial scores",
			candidates: []string{"/r/clean", "/r/energy", "/r/clean-energy"},
			query:      "clean energy",
			want:       Match{Path: "/r/clean-energy", Score: 2, Exact: true},
		},
		{
			name:       "highest partial score",
			candidates: []string{"/r/docs", "/r/energy-api", "/r/energy-clean-api"},
			query:      "clean energy api dashboard",
			want:       Match{Path: "/r/energy-clean-api", Score: 3},
		},
		{
			name:       "tie keeps first seen",
			candidates: []string{"/r/web-app", "/r/mobile-app"},
			query:      "app server",
			want:       Match{Path: "/r/web-app", Score: 1},
		},
		{
			name:       "multi token zero score falls back to first",
			candidates: []string{"/r/one", "/r/two"},
			query:      "nothing matches",
			want:       Match{Path: "/r/one", Score: 0},
		},
		{
			name:       "single token miss falls back to first",
			candidates: []string{"/r/one", "/r/two"},
			query:      "zzz",
			want:       Match{Path: "/r/one", Score: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchFolder(tt.candidates, tt.query)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchFolderEmptyCandidates(t *testing.T) {
	_, ok := MatchFolder(nil, "anything")
	assert.False(t, ok)
}
