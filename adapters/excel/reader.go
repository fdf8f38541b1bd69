package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adimpact/domain/core"
	apperrors "adimpact/internal/errors"
	"adimpact/internal/logging"

	"github.com/xuri/excelize/v2"
)

// Supported file types
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	fileType, err := FileTypeFromName(filePath)
	if err != nil {
		fileType = FileTypeXLSX
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// FileTypeFromName maps a file name to a supported file type by extension.
func FileTypeFromName(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, nil
	default:
		return "", core.NewUnsupportedFormatError(ext)
	}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*Table, error) {
	logging.Debug().Str("file", r.filePath).Str("type", r.fileType).Msg("reading data file")

	f, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrapf(err, "%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
		}
		return nil, apperrors.Wrapf(err, "failed to open %s", r.filePath)
	}
	defer f.Close()

	return ReadFrom(f, r.fileType)
}

// ReadFrom parses an already-open source, e.g. an uploaded form file.
func ReadFrom(src io.Reader, fileType string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	start := time.Now()
	switch fileType {
	case FileTypeCSV:
		rows, err = readCSVRows(src)
	case FileTypeXLSX:
		rows, err = readExcelRows(src)
	default:
		return nil, core.NewUnsupportedFormatError(fileType)
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeReadFailed, err)
	}

	if len(rows) == 0 {
		return nil, apperrors.Wrapf(core.ErrEmptyTable, "%s file has no header row", strings.ToUpper(fileType))
	}

	table := processRows(rows)
	logging.Debug().
		Str("type", fileType).
		Int("columns", len(table.Headers)).
		Int("rows", len(table.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("data file processed")
	return table, nil
}

// readExcelRows reads the first worksheet of a workbook. Cells come back
// as stored, not as displayed, so number formats never reach the coercer.
func readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSVRows reads delimited text, skipping malformed lines and lines
// carrying more fields than the header.
func readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		if len(rows) > 0 && len(record) > len(rows[0]) {
			skipped++
			continue
		}
		rows = append(rows, record)
	}

	if skipped > 0 {
		logging.Warn().Int("skipped", skipped).Msg("skipped malformed CSV lines")
	}
	return rows, nil
}

// processRows converts raw string rows into a Table
func processRows(rows [][]string) *Table {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &Table{
		Headers: headers,
		Rows:    dataRows,
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
