package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/export"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

func TestCreateDump_RoundTrip(t *testing.T) {
	recs := []models.Record{{Title: "A", DOI: "10.1/a", Source: "pubmed"}}
	data, err := createDump(recs)
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	var got []models.Record
	require.NoError(t, json.NewDecoder(zr).Decode(&got))
	assert.Equal(t, recs, got)
}

func TestCreateDump_Empty(t *testing.T) {
	data, err := createDump(nil)
	require.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	var got []models.Record
	require.NoError(t, json.NewDecoder(zr).Decode(&got))
	assert.Empty(t, got)
}

func TestBackupKey_SortsChronologically(t *testing.T) {
	t1 := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	keys := []string{
		backupKey("backups/", t1.Add(48*time.Hour)),
		backupKey("backups/", t1),
		backupKey("backups/", t1.Add(time.Hour)),
	}
	assert.Equal(t, "backups/backup-2025-01-02T03-04-05Z.json.gz", keys[1])
	sort.Strings(keys)
	assert.Equal(t, backupKey("backups/", t1), keys[0])
	assert.Equal(t, backupKey("backups/", t1.Add(48*time.Hour)), keys[2])
}

func TestReadDump_GzipAndPlainJSON(t *testing.T) {
	recs := []models.Record{
		{Title: "A", DOI: "10.1/a", Source: "pubmed"},
		{Title: "B", PMID: "2", Source: "crossref, pubmed"},
	}

	data, err := createDump(recs)
	require.NoError(t, err)
	got, err := readDump(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, recs, got)

	var plain bytes.Buffer
	require.NoError(t, export.WriteJSON(&plain, recs))
	got, err = readDump(&plain)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestReadDump_Invalid(t *testing.T) {
	_, err := readDump(strings.NewReader("not json"))
	assert.Error(t, err)

	_, err = readDump(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
	assert.Error(t, err)
}

func TestRestoreCommand_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"restore"})
	require.NoError(t, err)
	assert.Equal(t, "restore", cmd.Name())
	assert.Error(t, cmd.Args(cmd, nil), "restore needs a file")
}
