package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderlink/tenderlink/internal/recordio"
	"github.com/tenderlink/tenderlink/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// writeBatch writes a small batch in which the first two records are the
// same notice from two sources.
func writeBatch(t *testing.T) string {
	t.Helper()
	records := []types.Record{
		{
			ID: "ted-1", Source: "ted",
			Title: "Road maintenance services", BuyerName: "City of Lyon", BuyerCountry: "FR",
			CPVCodes: []string{"45233141"}, ValueAmount: types.Float(100000),
		},
		{
			ID: "boamp-1", Source: "boamp",
			Title: "Road Maintenance Services", BuyerName: "CITY OF LYON", BuyerCountry: "fr",
			Summary:  "Resurfacing of municipal roads across the city",
			CPVCodes: []string{"45233141"}, ValueAmount: types.Float(100000),
		},
		{
			ID: "ted-2", Source: "ted",
			Title: "School catering", BuyerName: "Ville de Nantes", BuyerCountry: "FR",
			CPVCodes: []string{"55524000"}, ValueAmount: types.Float(50000),
		},
	}
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	require.NoError(t, recordio.WriteFile(path, records, ""))
	return path
}

func withGlobals(t *testing.T, config string, verb bool) {
	t.Helper()
	oldConfig, oldVerbose := configPath, verbose
	configPath, verbose = config, verb
	t.Cleanup(func() { configPath, verbose = oldConfig, oldVerbose })
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tenderlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 0.7\nweights:\n  value: 0.5\n"), 0644))

	t.Run("file then env", func(t *testing.T) {
		withGlobals(t, path, false)
		t.Setenv("TENDERLINK_DEDUP_THRESHOLD", "0.65")

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, 0.65, cfg.Threshold)
		assert.Equal(t, 0.5, cfg.Weights.Value)
		assert.False(t, cfg.Verbose)
	})

	t.Run("verbose flag", func(t *testing.T) {
		withGlobals(t, path, true)
		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.True(t, cfg.Verbose)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		withGlobals(t, filepath.Join(dir, "nope.yaml"), false)
		_, err := loadConfig()
		assert.Error(t, err)
	})
}

func TestRecordRef(t *testing.T) {
	assert.Equal(t, "#4", recordRef(types.Record{}, 4))
	assert.Equal(t, "x-1", recordRef(types.Record{ID: "x-1"}, 4))
	assert.Equal(t, "ted/x-1", recordRef(types.Record{ID: "x-1", Source: "ted"}, 4))
}

func TestSortedByScore(t *testing.T) {
	pairs := []types.DuplicatePair{
		{LeftIndex: 0, RightIndex: 1, Score: types.SimilarityScore{Total: 0.8}},
		{LeftIndex: 0, RightIndex: 2, Score: types.SimilarityScore{Total: 0.9}},
		{LeftIndex: 1, RightIndex: 2, Score: types.SimilarityScore{Total: 0.8}},
	}
	got := sortedByScore(pairs)
	assert.Equal(t, 2, got[0].RightIndex)
	assert.Equal(t, [2]int{0, 1}, [2]int{got[1].LeftIndex, got[1].RightIndex})
	assert.Equal(t, [2]int{1, 2}, [2]int{got[2].LeftIndex, got[2].RightIndex})

	// Input untouched
	assert.Equal(t, 0.8, pairs[0].Score.Total)
}

// captureLog redirects the standard logger for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

// writeSuspectBatch writes a batch whose second record has no title.
func writeSuspectBatch(t *testing.T) string {
	t.Helper()
	records := []types.Record{
		{ID: "ok-1", Title: "Snow clearing services"},
		{ID: "bad-2", BuyerName: "City of Graz"},
	}
	path := filepath.Join(t.TempDir(), "suspect.json")
	require.NoError(t, recordio.WriteFile(path, records, ""))
	return path
}
