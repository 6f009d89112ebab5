package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunDuplicates_WritesSortedRows(t *testing.T) {
	in := writeCSV(t, "Title,Source\nB,pubmed\nA,crossref\nB,europepmc\nC,pubmed\n")
	out := filepath.Join(t.TempDir(), "dups.csv")

	var msg bytes.Buffer
	require.NoError(t, runDuplicates(in, out, "Title", false, &msg))
	assert.Contains(t, msg.String(), "Found 2 rows across 1 unique duplicated titles.")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Title,Source\nB,pubmed\nB,europepmc\n", string(data))
}

func TestRunDuplicates_NoDuplicatesCreatesNoFile(t *testing.T) {
	in := writeCSV(t, "Title\nA\nB\n")
	out := filepath.Join(t.TempDir(), "dups.csv")

	var msg bytes.Buffer
	require.NoError(t, runDuplicates(in, out, "Title", false, &msg))
	assert.Contains(t, msg.String(), "No duplicate values found")
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunDuplicates_Errors(t *testing.T) {
	var msg bytes.Buffer
	err := runDuplicates(filepath.Join(t.TempDir(), "missing.csv"), "out.csv", "Title", false, &msg)
	assert.Error(t, err)

	in := writeCSV(t, "Name\nA\n")
	err = runDuplicates(in, filepath.Join(t.TempDir(), "out.csv"), "Title", false, &msg)
	assert.ErrorContains(t, err, "column not found")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["harvest"])
	assert.True(t, names["export"])
	assert.True(t, names["duplicates"])
}
