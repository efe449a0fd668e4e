package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rpattn/cabletrack/internal/domain"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoCodeColumn is returned when no column can serve as the cable code.
	ErrNoCodeColumn = errors.New("no cable code column detected")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	// Header labels that identify the cable code column, checked in order.
	codeHeaderCandidates = []string{"code", "cable_code", "cable", "sigla"}
)

// ParseRecords turns an uploaded spreadsheet into a structured record set.
// The first non-empty row is the header; the cable code column is matched by
// name (code, cable_code, cable, sigla) and every other column becomes an
// attribute keyed by its sanitized header. Rows with a blank code cell are
// skipped, as exports routinely carry trailing filler rows.
func ParseRecords(fileName string, payload []byte) ([]domain.CableRecord, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	var rows [][]string
	var err error
	switch ext {
	case ".csv":
		rows, err = readCSV(payload)
	case ".xlsx":
		rows, err = readExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return buildRecords(rows)
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func buildRecords(rows [][]string) ([]domain.CableRecord, error) {
	var headerRow []string
	var dataRows [][]string
	for _, row := range rows {
		if rowEmpty(row) {
			continue
		}
		if headerRow == nil {
			headerRow = row
			continue
		}
		dataRows = append(dataRows, row)
	}
	if headerRow == nil {
		return nil, errors.New("no header row detected")
	}

	headers := sanitizeHeaders(headerRow)
	codeIndex := findCodeColumn(headers)
	if codeIndex < 0 {
		return nil, fmt.Errorf("%w: headers %v", ErrNoCodeColumn, headers)
	}

	records := make([]domain.CableRecord, 0, len(dataRows))
	for _, row := range dataRows {
		row = padRow(row, len(headers))

		code := strings.TrimSpace(row[codeIndex])
		if code == "" {
			continue
		}

		attributes := make(map[string]any, len(headers)-1)
		for idx, header := range headers {
			if idx == codeIndex {
				continue
			}
			value := strings.TrimSpace(row[idx])
			if value == "" {
				attributes[header] = nil
				continue
			}
			attributes[header] = value
		}
		records = append(records, domain.NewCableRecord(code, attributes))
	}

	return records, nil
}

func findCodeColumn(headers []string) int {
	for _, candidate := range codeHeaderCandidates {
		for idx, header := range headers {
			if strings.EqualFold(header, candidate) {
				return idx
			}
		}
	}
	return -1
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, ".", "_")
		name = strings.ReplaceAll(name, "-", "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
