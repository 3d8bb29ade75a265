package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tenderlink/tenderlink/internal/types"
)

func TestPairsXLSX(t *testing.T) {
	pairs := []types.DuplicatePair{
		{
			Left:      types.Record{ID: "ted-1", Title: "Road maintenance services"},
			Right:     types.Record{ID: "boamp-7", Title: "Road maintenance works"},
			LeftIndex: 0, RightIndex: 2,
			Score: types.SimilarityScore{
				Total:     0.87,
				Breakdown: types.ScoreBreakdown{Title: 0.75, Buyer: 1, CPV: 1, Value: 0.5},
			},
		},
		{
			Left:      types.Record{ID: "boamp-7", Title: "Road maintenance works"},
			Right:     types.Record{ID: "feed-3", Title: "Road maintenance"},
			LeftIndex: 2, RightIndex: 4,
			Score: types.SimilarityScore{Total: 0.81},
		},
	}
	clusters := [][]int{{0, 2, 4}}

	data, err := PairsXLSX(pairs, clusters)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PairsSheet, ClustersSheet}, f.GetSheetList())

	rows, err := f.GetRows(PairsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, pairHeaders, rows[0])
	assert.Equal(t, "ted-1", rows[1][2])
	assert.Equal(t, "boamp-7", rows[1][3])
	assert.Equal(t, "Road maintenance services", rows[1][4])

	total, err := f.GetCellValue(PairsSheet, "G2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.87", total)

	rows, err = f.GetRows(ClustersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "3", "0, 2, 4", "ted-1, boamp-7, feed-3"}, rows[1])
}

func TestPairsXLSXEmpty(t *testing.T) {
	data, err := PairsXLSX(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PairsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLayoutHelpersReportErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	err := writeRow(f, "Sheet1", 0, []any{"x"})
	assert.ErrorContains(t, err, "failed to address Sheet1 row 0")

	err = styleCells(f, "Sheet1", 1, 0, 3, 0)
	assert.ErrorContains(t, err, "failed to address Sheet1 row 1")

	err = setColWidths(f, "Missing", colWidth{"A", "B", 12})
	assert.ErrorContains(t, err, "failed to size Missing columns A:B")

	err = setColWidths(f, "Sheet1", colWidth{"A", "B", 500})
	assert.Error(t, err)

	err = freezeHeader(f, "Missing")
	assert.ErrorContains(t, err, "failed to freeze Missing header")

	require.NoError(t, setColWidths(f, "Sheet1", colWidth{"A", "B", 12}))
	require.NoError(t, freezeHeader(f, "Sheet1"))
}
