// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibkeys/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	bib := writeFile(t, dir, "refs.bib", "@book{a, title = {A}}")
	yml := writeFile(t, dir, "refs.yaml", "b:\n  type: book\n  title: B\n")
	txt := writeFile(t, dir, "refs.txt", "@book{c, title = {C}}")

	sources, err := readSources([]string{bib, yml, txt}, nil, nil)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, types.FormatBibTeX, sources[0].Format)
	assert.Equal(t, types.FormatStructured, sources[1].Format)
	assert.Equal(t, types.FormatAuto, sources[2].Format)
	assert.Equal(t, bib, sources[0].Name)

	sources, err = readSources([]string{txt}, []string{"bib"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.FormatBibTeX, sources[0].Format)

	_, err = readSources([]string{txt}, []string{"bib", "yml"}, nil)
	assert.Error(t, err)

	_, err = readSources([]string{txt}, []string{"pdf"}, nil)
	assert.Error(t, err)

	sources, err = readSources(nil, nil, strings.NewReader("@book{d, title = {D}}"))
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "stdin", sources[0].Name)
}

func TestTrimKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, trimKeys([]string{" a", "", "b ", "  "}))
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	bib := writeFile(t, dir, "refs.bib", `@book{zed, author = {Zed, Anna}, title = {Zed}, year = {2001}}
@book{abe, author = {Abe, Bob}, title = {Abe}, year = {2002}}
`)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"resolve", bib, "--style", "apa", "--full", "--cited", "zed", "--verbose"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "abe zed\n", out.String())
	assert.Contains(t, errOut.String(), "mode library")
}

func TestArchiveInfo(t *testing.T) {
	infos, err := archiveInfo()
	require.NoError(t, err)

	byName := make(map[string]styleInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}
	require.Contains(t, byName, "american-psychological-association")
	assert.True(t, byName["american-psychological-association"].Sorted)
	assert.Equal(t, []string{"apa"}, byName["american-psychological-association"].Aliases)
	assert.True(t, byName["elsevier-vancouver"].Dependent)
	assert.False(t, byName["ieee"].Sorted)
}
