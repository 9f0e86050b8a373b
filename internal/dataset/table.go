package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "salesdash/internal/errors"
)

// table is a raw header-plus-rows view of an input file
type table struct {
	path   string
	header []string
	index  map[string]int
	rows   [][]string
}

// readTable reads a .csv file or the first sheet of a .xlsx file.
// The first row is the header.
func readTable(ctx context.Context, path string) (*table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path)
	default:
		return nil, apperrors.InvalidArgument("%s: unsupported file type %q (want .csv or .xlsx)", path, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.EmptyInput(path)
	}

	header := lo.Map(records[0], func(h string, i int) string {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		return strings.TrimSpace(h)
	})
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	return &table{path: path, header: header, index: index, rows: records[1:]}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open "+path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read "+path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open "+path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.EmptyInput(path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read sheet %q of %s", sheets[0], path), err)
	}
	return rows, nil
}

// require checks that every column is present in the header
func (t *table) require(columns []string) error {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return apperrors.MissingField(c, t.header).WithContext("path", t.path)
		}
	}
	return nil
}

// line returns the 1-based file line of a data row
func line(row int) int {
	return row + 2
}

// text returns a cell; spreadsheet rows may omit trailing empty cells
func (t *table) text(row []string, column string) string {
	i := t.index[column]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *table) number(row []string, n int, column string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(t.text(row, column))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.InvalidArgument("%s: line %d: column %q: %q is not a number", t.path, line(n), column, raw).
			WithContext("path", t.path)
	}
	return d, nil
}
