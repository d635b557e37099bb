package sheet

import (
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

const exportSheet = "Cronograma"

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

func exportRow(t model.Task) []string {
	return []string{
		strconv.Itoa(t.Number),
		t.Classification,
		t.Category,
		t.Phase,
		t.Condition,
		t.Name,
		strconv.Itoa(t.DurationDays),
		t.HowTo,
		t.ReferenceURL,
		formatDate(t.StartDate),
		formatDate(t.EndDate),
		formatDate(t.Deadline),
		t.ResponsibleName,
		strconv.Itoa(t.DelayDays),
		fmt.Sprintf("%d%%", schedule.ClampPercent(t.Percent)),
		schedule.StatusFromPercentage(t.Percent),
	}
}

// WriteCSV writes tasks as CSV with a header row. Every field is quoted.
func WriteCSV(w io.Writer, tasks []model.Task) error {
	write := func(fields []string) error {
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
		return err
	}

	if err := write(exportHeaders); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range tasks {
		if err := write(exportRow(t)); err != nil {
			return fmt.Errorf("writing csv row %d: %w", t.Number, err)
		}
	}
	return nil
}

// WriteXLSX writes tasks as a single-sheet workbook.
func WriteXLSX(w io.Writer, tasks []model.Task) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range tasks {
		fields := exportRow(t)
		row := make([]interface{}, len(fields))
		for j, v := range fields {
			row[j] = v
		}
		row[0] = t.Number
		row[6] = t.DurationDays
		row[13] = t.DelayDays

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", t.Number, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing workbook: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Write exports tasks to path, choosing the format by extension.
func Write(path string, tasks []model.Task) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = WriteXLSX(out, tasks)
	case ".csv":
		err = WriteCSV(out, tasks)
	default:
		err = fmt.Errorf("%q: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}
	if err != nil {
		return err
	}
	return out.Close()
}
