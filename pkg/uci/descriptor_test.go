package uci_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/herohde/arena/pkg/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode-bit probe")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "engine")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))

	d, err := uci.NewDescriptor(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, d.Path)
	assert.Equal(t, "engine", d.Name) // display name defaults to the base name

	d, err = uci.NewDescriptor(path, "Mock 1.0", "--uci")
	require.NoError(t, err)
	assert.Equal(t, "Mock 1.0", d.Name)
	assert.Equal(t, []string{"--uci"}, d.Args)
}

func TestNewDescriptorRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode-bit probe")
	}

	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		_, err := uci.NewDescriptor(filepath.Join(dir, "absent"), "")
		assert.ErrorIs(t, err, uci.ErrLaunch)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := uci.NewDescriptor(dir, "")
		assert.ErrorIs(t, err, uci.ErrLaunch)
	})

	t.Run("not executable", func(t *testing.T) {
		path := filepath.Join(dir, "data")
		require.NoError(t, os.WriteFile(path, []byte("not a program"), 0644))

		_, err := uci.NewDescriptor(path, "")
		assert.ErrorIs(t, err, uci.ErrLaunch)
	})
}
