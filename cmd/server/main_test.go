package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/broadcast"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ACI Deployment Tracker Backend")
}

func TestCatalogCheck(t *testing.T) {
	t.Run("clean catalogue", func(t *testing.T) {
		path := writeCatalog(t, `
fabrics:
  - id: north-it
  - id: south-it
sections:
  - id: prep
    subsections:
      - title: Cabling
        tasks:
          - id: cable-1
          - id: cable-2
`)
		out, err := runCLI(t, "catalog", "check", path)
		require.NoError(t, err)
		assert.Contains(t, out, "fabrics: 2")
		assert.Contains(t, out, "tasks: 2")
	})

	t.Run("reports skipped descriptors", func(t *testing.T) {
		path := writeCatalog(t, `
fabrics:
  - id: north-it
  - name: no id
`)
		out, err := runCLI(t, "catalog", "check", path)
		require.Error(t, err)
		assert.Contains(t, out, "fabrics[1]: missing id")
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := runCLI(t, "catalog", "check", filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorContains(t, err, "read catalog file")
	})

	t.Run("requires a path", func(t *testing.T) {
		_, err := runCLI(t, "catalog", "check")
		require.Error(t, err)
	})
}

func TestSetupConfigFlagOverrides(t *testing.T) {
	t.Setenv("PORT", "8000")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := setupConfig(serveOptions{port: "9100", catalogPath: "fabrics.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "fabrics.yaml", cfg.CatalogPath)

	_, err = setupConfig(serveOptions{port: "not-a-port"})
	require.Error(t, err)
}

func TestHubHealthCheck(t *testing.T) {
	hub := broadcast.NewHub(clockwork.NewRealClock(), nil, broadcast.Options{})
	check := hubHealthCheck(hub)

	require.NoError(t, check.Check(context.Background()))

	hub.Stop()
	assert.Error(t, check.Check(context.Background()))
}
