package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func writeAllowlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write allow-list: %v", err)
	}
	return path
}

func TestLoad_NumbersAndStrings(t *testing.T) {
	path := writeAllowlist(t, `{"allowed_users": [985284787252105226, "1152991512620171346"]}`)
	p := Load(path, zap.NewNop())

	assert.Equal(t, 2, p.Size())
	assert.True(t, p.IsAllowed(985284787252105226))
	assert.True(t, p.IsAllowed(1152991512620171346))
	assert.False(t, p.IsAllowed(42))
}

func TestLoad_MissingFileYieldsEmptyPolicy(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop())
	assert.Equal(t, 0, p.Size())
	assert.False(t, p.IsAllowed(1))
}

func TestLoad_CorruptFileYieldsEmptyPolicy(t *testing.T) {
	path := writeAllowlist(t, `{"allowed_users": [`)
	p := Load(path, zap.NewNop())
	assert.Equal(t, 0, p.Size())
}

func TestLoad_SkipsNonNumericEntries(t *testing.T) {
	path := writeAllowlist(t, `{"allowed_users": ["12.5", "7"]}`)
	p := Load(path, zap.NewNop())
	assert.Equal(t, 1, p.Size())
	assert.True(t, p.IsAllowed(7))
}
