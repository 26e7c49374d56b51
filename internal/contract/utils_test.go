package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		excludes []string
		want     bool
	}{
		{"no patterns", "src/main.rs", nil, false},
		{"directory prefix", "vendor/lib/util.go", []string{"vendor/"}, true},
		{"nested directory prefix", "third_party/vendor/util.go", []string{"vendor/"}, true},
		{"extension suffix", "app/bundle.min.js", []string{".min.js"}, true},
		{"extension no match", "app/bundle.js", []string{".min.js"}, false},
		{"glob on basename", "deep/nested/app.min.js", []string{"*.min.js"}, true},
		{"doublestar glob", "a/generated/b/file.go", []string{"**/generated/**"}, true},
		{"substring", "some/testdata/file.txt", []string{"testdata"}, true},
		{"empty pattern skipped", "src/main.rs", []string{"", "  "}, false},
		{"lockfile by name", "Cargo.lock", []string{"Cargo.lock"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestTruncatePath(t *testing.T) {
	t.Run("short path unchanged", func(t *testing.T) {
		assert.Equal(t, "a/b.go", TruncatePath("a/b.go", 20))
	})

	t.Run("long path keeps the tail", func(t *testing.T) {
		got := TruncatePath("internal/very/deep/directory/tree/file.go", 20)
		assert.Len(t, got, 20)
		assert.True(t, got[:3] == "...", "expected ellipsis prefix, got %q", got)
		assert.Contains(t, got, "file.go")
	})

	t.Run("tiny width leaves path alone", func(t *testing.T) {
		assert.Equal(t, "abcdef", TruncatePath("abcdef", 3))
	})
}

func TestParseBoolString(t *testing.T) {
	truthy := []string{"yes", "YES", "true", "True", "1"}
	for _, s := range truthy {
		got, err := ParseBoolString(s)
		require.NoError(t, err, "input %q", s)
		assert.True(t, got, "input %q", s)
	}

	falsy := []string{"no", "NO", "false", "False", "0"}
	for _, s := range falsy {
		got, err := ParseBoolString(s)
		require.NoError(t, err, "input %q", s)
		assert.False(t, got, "input %q", s)
	}

	_, err := ParseBoolString("maybe")
	require.Error(t, err)
}

func TestGetHistoryDBFilePath(t *testing.T) {
	path := GetHistoryDBFilePath()
	assert.Contains(t, path, ".devflow_history.db")
}
