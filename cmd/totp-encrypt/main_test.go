package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENV", "test")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_FILE", filepath.Join(dir, "auth.db"))
	t.Setenv("ENCRYPTION_KEY", "totp-encrypt-test-key")

	t.Run("empty database", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.Equal(t, 0, run(false, &stdout, &stderr))
		require.Equal(t, "0 plaintext secret(s) pending\n", stdout.String())
	})

	t.Run("bad configuration", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mysql")

		var stdout, stderr bytes.Buffer
		require.Equal(t, 1, run(true, &stdout, &stderr))
		require.Contains(t, stderr.String(), "failed to load configuration")
		require.Empty(t, stdout.String())
	})
}
