// Package export renders near-duplicate review results as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tenderlink/tenderlink/internal/types"
)

const (
	PairsSheet    = "Pairs"
	ClustersSheet = "Clusters"
)

var pairHeaders = []string{
	"Left #", "Right #", "Left ID", "Right ID", "Left Title", "Right Title",
	"Total", "Title", "Buyer", "CPV", "Value",
}

var clusterHeaders = []string{"Cluster", "Size", "Members", "Record IDs"}

// PairsXLSX builds a workbook with one row per pair and one row per cluster.
// Cluster members are batch indices; their ids are looked up from pairs.
func PairsXLSX(pairs []types.DuplicatePair, clusters [][]int) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	scoreStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create score style: %w", err)
	}

	// NewFile starts with "Sheet1"; rename it rather than leave it empty.
	if err := f.SetSheetName("Sheet1", PairsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ClustersSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeHeaders(f, PairsSheet, pairHeaders, headerStyle); err != nil {
		return nil, err
	}
	ids := make(map[int]string)
	for i, p := range pairs {
		row := i + 2
		ids[p.LeftIndex] = p.Left.ID
		ids[p.RightIndex] = p.Right.ID

		bd := p.Score.Breakdown
		values := []any{
			p.LeftIndex, p.RightIndex, p.Left.ID, p.Right.ID, p.Left.Title, p.Right.Title,
			p.Score.Total, bd.Title, bd.Buyer, bd.CPV, bd.Value,
		}
		if err := writeRow(f, PairsSheet, row, values); err != nil {
			return nil, err
		}
		if err := styleCells(f, PairsSheet, row, 7, len(pairHeaders), scoreStyle); err != nil {
			return nil, err
		}
	}
	if err := setColWidths(f, PairsSheet, colWidth{"C", "D", 18}, colWidth{"E", "F", 48}); err != nil {
		return nil, err
	}

	if err := writeHeaders(f, ClustersSheet, clusterHeaders, headerStyle); err != nil {
		return nil, err
	}
	for i, members := range clusters {
		idx := make([]string, len(members))
		refs := make([]string, len(members))
		for j, m := range members {
			idx[j] = strconv.Itoa(m)
			refs[j] = ids[m]
		}
		values := []any{i + 1, len(members), strings.Join(idx, ", "), strings.Join(refs, ", ")}
		if err := writeRow(f, ClustersSheet, i+2, values); err != nil {
			return nil, err
		}
	}
	if err := setColWidths(f, ClustersSheet, colWidth{"C", "D", 40}); err != nil {
		return nil, err
	}
	if err := freezeHeader(f, PairsSheet); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	return styleCells(f, sheet, 1, 1, len(headers), style)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address %s row %d: %w", sheet, row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// styleCells applies style to columns fromCol..toCol (1-based) of row.
func styleCells(f *excelize.File, sheet string, row, fromCol, toCol, style int) error {
	first, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return fmt.Errorf("failed to address %s row %d: %w", sheet, row, err)
	}
	last, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return fmt.Errorf("failed to address %s row %d: %w", sheet, row, err)
	}
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return fmt.Errorf("failed to style %s row %d: %w", sheet, row, err)
	}
	return nil
}

type colWidth struct {
	from, to string
	width    float64
}

func setColWidths(f *excelize.File, sheet string, widths ...colWidth) error {
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("failed to size %s columns %s:%s: %w", sheet, w.from, w.to, err)
		}
	}
	return nil
}

// freezeHeader keeps row 1 of sheet visible while scrolling.
func freezeHeader(f *excelize.File, sheet string) error {
	err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("failed to freeze %s header: %w", sheet, err)
	}
	return nil
}
