package export

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rpattn/cabletrack/internal/snapshot"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Cables"

// Service renders a stored snapshot back to a spreadsheet so operators can
// take a point-in-time dataset away for offline review.
type Service struct {
	snapshots *snapshot.Service
}

// NewService creates the export service.
func NewService(snapshots *snapshot.Service) *Service {
	return &Service{snapshots: snapshots}
}

// WriteXLSX writes the record set of an upload as an .xlsx workbook. The
// header row is the cable code followed by the union of attribute names in
// ascending order; records keep their ingestion order.
func (s *Service) WriteXLSX(ctx context.Context, uploadID uuid.UUID, out io.Writer) error {
	records, err := s.snapshots.Records(ctx, uploadID)
	if err != nil {
		return err
	}

	columns := map[string]struct{}{}
	for _, record := range records {
		for key := range record.Attributes {
			columns[key] = struct{}{}
		}
	}
	headers := make([]string, 0, len(columns)+1)
	for key := range columns {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	headers = append([]string{"code"}, headers...)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := writeRow(f, 1, anySlice(headers)); err != nil {
		return err
	}

	for rowIdx, record := range records {
		row := make([]any, len(headers))
		row[0] = record.Code
		for colIdx, header := range headers[1:] {
			row[colIdx+1] = record.Attributes[header]
		}
		if err := writeRow(f, rowIdx+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNumber int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNumber, err)
	}
	return nil
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for idx, value := range values {
		out[idx] = value
	}
	return out
}
