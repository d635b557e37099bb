package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

// headerScanRows is how many leading rows are searched for the header.
const headerScanRows = 10

// ErrNoHeader is returned when no row of the sheet names a task column.
var ErrNoHeader = errors.New("no header row with a task name column")

// ErrUnsupportedFormat is returned for extensions other than .xlsx and .csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Read parses the spreadsheet at path. Dates without a zone are read in loc.
func Read(path string, loc *time.Location) ([]model.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(f, filepath.Ext(path), loc)
}

// ReadFrom parses a spreadsheet stream; ext selects the format.
func ReadFrom(r io.Reader, ext string, loc *time.Location) ([]model.Task, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(ext) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	return rowsToTasks(rows, loc)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := sheets[0]
	if i := f.GetActiveSheetIndex(); i >= 0 && i < len(sheets) {
		name = sheets[i]
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", name, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks ';' when the first line has more semicolons than
// commas, as spreadsheet exports in pt-BR locales do.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func rowsToTasks(rows [][]string, loc *time.Location) ([]model.Task, error) {
	headerAt := -1
	var idx map[column]int
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if m, ok := mapHeader(rows[i]); ok {
			headerAt, idx = i, m
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrNoHeader
	}

	var tasks []model.Task
	used := make(map[int]bool)
	for _, row := range rows[headerAt+1:] {
		cell := func(c column) string {
			i, ok := idx[c]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := cell(colName)
		if name == "" {
			continue
		}

		t := model.Task{
			Classification:  cell(colClassification),
			Category:        cell(colCategory),
			Phase:           cell(colPhase),
			Condition:       cell(colCondition),
			Name:            name,
			DurationDays:    schedule.ParseDurationDays(cell(colDuration)),
			Percent:         schedule.ParseProgress(cell(colPercent)),
			StartDate:       parseCellDate(cell(colStart), loc),
			EndDate:         parseCellDate(cell(colEnd), loc),
			Deadline:        parseCellDate(cell(colDeadline), loc),
			DelayDays:       schedule.ParseInt(cell(colDelay)),
			ResponsibleName: cell(colResponsible),
			HowTo:           cell(colHowTo),
			ReferenceURL:    cell(colReference),
		}

		t.Number = schedule.ParseInt(cell(colNumber))
		if t.Number <= 0 || used[t.Number] {
			t.Number = nextFree(used, len(tasks)+1)
		}
		used[t.Number] = true

		tasks = append(tasks, t)
	}
	return tasks, nil
}

func nextFree(used map[int]bool, from int) int {
	n := from
	for used[n] {
		n++
	}
	return n
}

// parseCellDate accepts text dates and Excel serial day numbers.
func parseCellDate(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	if t := schedule.ParseDate(s, loc); t != nil {
		return t
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < 1 || serial > 2958465 {
		return nil
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.Date()
	local := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return &local
}
