package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{
		"a.yaml",
		"notes.txt",
		filepath.Join("trials", "b.yml"),
		filepath.Join("trials", "deep", "c.yaml"),
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("identifier: X\n"), 0644))
	}
	return root
}

var yamlExtensions = []string{".yaml", ".yml"}

func TestResolveSources_Directory(t *testing.T) {
	root := makeTree(t)

	got, err := resolveSources([]string{root}, yamlExtensions)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.yaml"),
		filepath.Join(root, "trials", "b.yml"),
		filepath.Join(root, "trials", "deep", "c.yaml"),
	}, got)
}

func TestResolveSources_Glob(t *testing.T) {
	root := makeTree(t)

	got, err := resolveSources([]string{filepath.Join(root, "**", "*.yaml")}, yamlExtensions)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.yaml"),
		filepath.Join(root, "trials", "deep", "c.yaml"),
	}, got)
}

func TestResolveSources_ExplicitFileKeepsExtension(t *testing.T) {
	root := makeTree(t)

	got, err := resolveSources([]string{filepath.Join(root, "notes.txt")}, yamlExtensions)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "notes.txt")}, got)
}

func TestResolveSources_Deduplicates(t *testing.T) {
	root := makeTree(t)
	a := filepath.Join(root, "a.yaml")

	got, err := resolveSources([]string{a, root, a}, yamlExtensions)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, a, got[0])
}

func TestResolveSources_Errors(t *testing.T) {
	root := makeTree(t)

	_, err := resolveSources([]string{filepath.Join(root, "missing.yaml")}, yamlExtensions)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = resolveSources([]string{filepath.Join(root, "*.json")}, yamlExtensions)
	assert.Error(t, err)
}

func TestHasExtension(t *testing.T) {
	assert.True(t, hasExtension("x.YAML", []string{"yaml"}))
	assert.True(t, hasExtension("x.yml", yamlExtensions))
	assert.False(t, hasExtension("x.txt", yamlExtensions))
}
