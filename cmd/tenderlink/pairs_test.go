package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tenderlink/tenderlink/internal/audit"
	"github.com/tenderlink/tenderlink/internal/deduplication"
	"github.com/tenderlink/tenderlink/internal/export"
)

func TestRunPairs(t *testing.T) {
	withGlobals(t, "", false)
	input := writeBatch(t)
	dir := t.TempDir()
	opts := pairsOptions{
		input:     input,
		threshold: 0.8,
		xlsxPath:  filepath.Join(dir, "review.xlsx"),
		auditDB:   filepath.Join(dir, "audit.db"),
		limit:     20,
	}

	var out bytes.Buffer
	require.NoError(t, runPairs(context.Background(), opts, deduplication.DefaultConfig(), &out))

	text := out.String()
	assert.Contains(t, text, "Found 1 pair(s) at or above 0.80 among 3 records")
	assert.Contains(t, text, "1.000  ted/ted-1 <-> boamp/boamp-1")
	assert.Contains(t, text, "1: [0 1]")
	assert.Contains(t, text, "Wrote "+opts.xlsxPath)
	assert.Contains(t, text, "Recorded run ")

	f, err := excelize.OpenFile(opts.xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.PairsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	store, err := audit.Open(context.Background(), opts.auditDB)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "batch.jsonl", runs[0].Label)
	assert.Equal(t, 3, runs[0].RecordCount)
	assert.Equal(t, 1, runs[0].PairCount)
}

func TestRunPairsAtExactThreshold(t *testing.T) {
	withGlobals(t, "", false)
	input := writeBatch(t)

	var out bytes.Buffer
	opts := pairsOptions{input: input, threshold: 1, limit: 20}
	cfg := deduplication.DefaultConfig()

	// Same notice from two sources scores exactly 1.
	require.NoError(t, runPairs(context.Background(), opts, cfg, &out))
	assert.Contains(t, out.String(), "Found 1 pair(s)")

	opts.input = writeEmptyBatch(t)
	out.Reset()
	require.NoError(t, runPairs(context.Background(), opts, cfg, &out))
	assert.Contains(t, out.String(), "No pairs at or above 1.00 among 0 records")
}

func TestRunPairsLimit(t *testing.T) {
	withGlobals(t, "", false)
	input := writeBatch(t)

	var out bytes.Buffer
	opts := pairsOptions{input: input, threshold: 0, limit: 1}
	require.NoError(t, runPairs(context.Background(), opts, deduplication.DefaultConfig(), &out))
	assert.Contains(t, out.String(), "Found 3 pair(s)")
	assert.Contains(t, out.String(), "... 2 more")
}

func TestRunPairsRejectsThreshold(t *testing.T) {
	withGlobals(t, "", false)
	input := writeBatch(t)

	var out bytes.Buffer
	opts := pairsOptions{input: input, threshold: 1.5}
	err := runPairs(context.Background(), opts, deduplication.DefaultConfig(), &out)
	assert.ErrorIs(t, err, deduplication.ErrInvalidThreshold)
}

func writeEmptyBatch(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	return path
}

func TestWithBatchLimit(t *testing.T) {
	configured := deduplication.DefaultConfig()
	configured.MaxBatchSize = 800

	tests := []struct {
		name      string
		cfg       deduplication.Config
		flagValue int
		flagSet   bool
		want      int
	}{
		{"cli default", deduplication.DefaultConfig(), defaultMaxBatchSize, false, defaultMaxBatchSize},
		{"config wins over cli default", configured, defaultMaxBatchSize, false, 800},
		{"flag wins over config", configured, 50, true, 50},
		{"flag lifts limit", configured, 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withBatchLimit(tt.cfg, tt.flagValue, tt.flagSet)
			assert.Equal(t, tt.want, got.MaxBatchSize)
		})
	}
}

func TestRunPairsBatchLimit(t *testing.T) {
	withGlobals(t, "", false)
	cfg := withBatchLimit(deduplication.DefaultConfig(), 2, true)

	var out bytes.Buffer
	opts := pairsOptions{input: writeBatch(t), threshold: 0.8}
	err := runPairs(context.Background(), opts, cfg, &out)
	assert.ErrorIs(t, err, deduplication.ErrBatchTooLarge)
}

func TestRunPairsVerboseFromConfig(t *testing.T) {
	withGlobals(t, "", false)
	logs := captureLog(t)
	cfg := deduplication.DefaultConfig()
	cfg.Verbose = true

	var out bytes.Buffer
	opts := pairsOptions{input: writeSuspectBatch(t), threshold: 0.8}
	require.NoError(t, runPairs(context.Background(), opts, cfg, &out))
	assert.Contains(t, logs.String(), "Warning: record bad-2: title is required")
	assert.Contains(t, logs.String(), "[DEDUP] Scored 1 pairs across 2 records")
}
