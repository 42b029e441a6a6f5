package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, n int) (string, []string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rentme.log")
	var content strings.Builder
	var all []string
	for i := 1; i <= n; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	require.NoError(t, os.WriteFile(path, []byte(content.String()), 0o644))
	return path, all
}

func TestRead(t *testing.T) {
	path, all := writeLines(t, 10)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, all},
		{"read all (negative)", -1, all},
		{"read partial (5)", 5, all[5:]},
		{"read exactly all (10)", 10, all},
		{"read more than exists (20)", 20, all},
		{"wraps ring (3)", 3, all[7:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.maxLines)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestLevelOf(t *testing.T) {
	lvl, ok := LevelOf(`12:04:05 WRN poll failed component=chat`)
	require.True(t, ok)
	assert.Equal(t, zerolog.WarnLevel, lvl)

	lvl, ok = LevelOf(`{"level":"error","component":"catalog","message":"fetch failed"}`)
	require.True(t, ok)
	assert.Equal(t, zerolog.ErrorLevel, lvl)

	_, ok = LevelOf("    continuation")
	assert.False(t, ok)
	_, ok = LevelOf(`{"message":"no level"}`)
	assert.False(t, ok)
}

func TestFilter_KeepsContinuationWithParent(t *testing.T) {
	lines := []string{
		"12:00:00 INF starting rentme",
		"12:00:01 WRN poll failed",
		"  detail for warning",
		"12:00:02 DBG tick",
		"  detail for debug",
		`{"level":"error","message":"boom"}`,
	}
	got := Filter(lines, zerolog.WarnLevel)
	assert.Equal(t, []string{
		"12:00:01 WRN poll failed",
		"  detail for warning",
		`{"level":"error","message":"boom"}`,
	}, got)
}
