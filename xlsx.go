package main

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Pitches spread cells onto the fragment grid far enough apart that the
// 2-unit row quantizer never merges adjacent spreadsheet rows.
const (
	xlsxColPitch = 40.0
	xlsxRowPitch = 10.0
)

// ReadXLSXFragments converts a spreadsheet schedule export into the
// positioned-fragment stream the row reconstructor consumes: one page per
// sheet, with the sheet's top row mapped to the highest y so it sorts first.
func ReadXLSXFragments(path string) ([][]Fragment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var pages [][]Fragment
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		var frags []Fragment
		for i, row := range rows {
			y := float64(len(rows)-i) * xlsxRowPitch
			for j, cell := range row {
				if strings.TrimSpace(cell) == "" {
					continue
				}
				frags = append(frags, Fragment{
					Text:  cell,
					X:     float64(j) * xlsxColPitch,
					Y:     y,
					Width: float64(len(cell)),
				})
			}
		}
		pages = append(pages, frags)
	}
	return pages, nil
}
