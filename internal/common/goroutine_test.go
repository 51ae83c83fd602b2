package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestSafeGo(t *testing.T) {
	done := make(chan struct{})

	SafeGo(arbor.NewLogger(), "worker", func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	origDir := CrashLogDir
	defer func() { CrashLogDir = origDir }()
	InstallCrashHandler(t.TempDir())

	SafeGo(arbor.NewLogger(), "panicky", func() {
		panic("connection lost")
	})

	require.Eventually(t, func() bool {
		matches, err := filepath.Glob(filepath.Join(CrashLogDir, "crash-*.log"))
		return err == nil && len(matches) > 0
	}, 2*time.Second, 50*time.Millisecond, "expected a crash file after the panic")

	matches, err := filepath.Glob(filepath.Join(CrashLogDir, "crash-*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "goroutine panicky: connection lost")
}

func TestGetGoroutineCount(t *testing.T) {
	before := GetGoroutineCount()

	SafeGo(arbor.NewLogger(), "counted", func() {})

	assert.Equal(t, before+1, GetGoroutineCount())
}
