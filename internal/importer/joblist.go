package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// JobOperation is the CAM operation a job row requests.
type JobOperation int

const (
	JobOutline JobOperation = iota
	JobPocket
	JobDrill
	JobEngrave
)

// Job is one row of a batch job list: a rectangular blank and the
// operation to run on it.
type Job struct {
	Label     string
	Operation JobOperation
	Width     float64 // mm
	Height    float64 // mm
	Depth     float64 // mm, positive as entered; generators negate it
	Quantity  int
}

// JobListResult holds a parsed job list plus per-row diagnostics.
type JobListResult struct {
	Jobs     []Job
	Errors   []string
	Warnings []string
}

// jobColumns maps semantic roles to column indices in the data.
type jobColumns struct {
	Label     int
	Operation int
	Width     int
	Height    int
	Depth     int
	Quantity  int
}

// jobHeaderAliases maps canonical column names to accepted spellings, all
// lowercase.
var jobHeaderAliases = map[string][]string{
	"label":     {"label", "name", "job", "job name", "part", "description", "desc", "item"},
	"operation": {"operation", "op", "type", "process", "cut type"},
	"width":     {"width", "w", "x"},
	"height":    {"height", "h", "length", "len", "y"},
	"depth":     {"depth", "d", "z", "cut depth", "thickness"},
	"quantity":  {"quantity", "qty", "count", "num", "pcs", "pieces"},
}

// DetectCSVDelimiter determines the most likely delimiter by trying comma,
// semicolon, tab, and pipe; the one producing the most consistent
// multi-column row shape wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	best := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		counts := map[int]int{}
		for _, rec := range records {
			counts[len(rec)]++
		}
		score := 0
		for cols, n := range counts {
			if cols > 1 && n > score {
				score = n
			}
		}
		if score > bestScore {
			bestScore = score
			best = delim
		}
	}
	return best
}

// detectJobColumns maps the header row to column roles. Returns ok=false
// when the row does not look like a header, in which case positional
// mapping (label, operation, width, height, depth, quantity) applies.
func detectJobColumns(row []string) (jobColumns, bool) {
	cols := jobColumns{Label: -1, Operation: -1, Width: -1, Height: -1, Depth: -1, Quantity: -1}
	matched := 0
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for canonical, aliases := range jobHeaderAliases {
			for _, alias := range aliases {
				if name != alias {
					continue
				}
				matched++
				switch canonical {
				case "label":
					if cols.Label == -1 {
						cols.Label = i
					}
				case "operation":
					if cols.Operation == -1 {
						cols.Operation = i
					}
				case "width":
					if cols.Width == -1 {
						cols.Width = i
					}
				case "height":
					if cols.Height == -1 {
						cols.Height = i
					}
				case "depth":
					if cols.Depth == -1 {
						cols.Depth = i
					}
				case "quantity":
					if cols.Quantity == -1 {
						cols.Quantity = i
					}
				}
			}
		}
	}
	if matched < 2 {
		return jobColumns{Label: 0, Operation: 1, Width: 2, Height: 3, Depth: 4, Quantity: 5}, false
	}
	return cols, true
}

func parseOperation(s string) (JobOperation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outline", "cut", "cutout", "profile":
		return JobOutline, true
	case "pocket", "clear":
		return JobPocket, true
	case "drill", "hole", "holes":
		return JobDrill, true
	case "engrave", "etch", "mark":
		return JobEngrave, true
	default:
		return JobOutline, false
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseJobRow extracts one Job. Returns an error message for rejected rows
// and a warning for rows imported with a default substituted.
func parseJobRow(row []string, cols jobColumns, rowLabel string, jobCount int) (Job, string, string) {
	job := Job{Quantity: 1}
	var warning string

	job.Label = cell(row, cols.Label)
	if job.Label == "" {
		job.Label = fmt.Sprintf("Job %d", jobCount+1)
	}

	opStr := cell(row, cols.Operation)
	if opStr != "" {
		op, ok := parseOperation(opStr)
		if !ok {
			warning = fmt.Sprintf("%s: unknown operation %q, defaulting to outline", rowLabel, opStr)
		}
		job.Operation = op
	}

	widthStr := cell(row, cols.Width)
	if widthStr == "" {
		return Job{}, fmt.Sprintf("%s: missing width", rowLabel), ""
	}
	width, err := strconv.ParseFloat(widthStr, 64)
	if err != nil {
		return Job{}, fmt.Sprintf("%s: invalid width %q", rowLabel, widthStr), ""
	}
	job.Width = width

	heightStr := cell(row, cols.Height)
	if heightStr == "" {
		return Job{}, fmt.Sprintf("%s: missing height", rowLabel), ""
	}
	height, err := strconv.ParseFloat(heightStr, 64)
	if err != nil {
		return Job{}, fmt.Sprintf("%s: invalid height %q", rowLabel, heightStr), ""
	}
	job.Height = height

	if depthStr := cell(row, cols.Depth); depthStr != "" {
		depth, err := strconv.ParseFloat(depthStr, 64)
		if err != nil {
			return Job{}, fmt.Sprintf("%s: invalid depth %q", rowLabel, depthStr), ""
		}
		if depth < 0 {
			depth = -depth
		}
		job.Depth = depth
	}

	if qtyStr := cell(row, cols.Quantity); qtyStr != "" {
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return Job{}, fmt.Sprintf("%s: invalid quantity %q", rowLabel, qtyStr), ""
		}
		job.Quantity = qty
	}

	if job.Width <= 0 || job.Height <= 0 || job.Quantity <= 0 {
		return Job{}, fmt.Sprintf("%s: width, height, and quantity must be positive", rowLabel), ""
	}
	return job, "", warning
}

// ImportJobListCSV reads a batch job list from a CSV file, auto-detecting
// the delimiter and mapping columns by header name.
func ImportJobListCSV(path string) JobListResult {
	result := JobListResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("detected %s delimiter", name))
	}
	return importJobRows(readCSV(bytes.NewReader(data), delimiter), "line", result.Warnings)
}

// ImportJobListCSVFromReader parses a job list from a reader with a known
// delimiter, mainly for tests.
func ImportJobListCSVFromReader(r io.Reader, delimiter rune) JobListResult {
	return importJobRows(readCSV(r, delimiter), "line", nil)
}

func readCSV(r io.Reader, delimiter rune) [][]string {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil
	}
	return records
}

// ImportJobListExcel reads a batch job list from the first sheet of an
// Excel workbook.
func ImportJobListExcel(path string) JobListResult {
	result := JobListResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read Excel data: %v", err))
		return result
	}
	return importJobRows(rows, "row", nil)
}

// importJobRows is the shared CSV/Excel import path: header detection,
// column mapping, then row-by-row parsing with per-row diagnostics.
func importJobRows(rows [][]string, rowPrefix string, initialWarnings []string) JobListResult {
	result := JobListResult{Warnings: initialWarnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "no data rows found")
		return result
	}

	cols, hasHeader := detectJobColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "detected header row, skipping")
		var missing []string
		if cols.Width == -1 {
			missing = append(missing, "width")
		}
		if cols.Height == -1 {
			missing = append(missing, "height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, "required columns not found in header: "+strings.Join(missing, ", "))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// Positional mapping, but an unrecognized non-numeric first row is
		// still a header worth skipping.
		if _, err := strconv.ParseFloat(cell(rows[0], 2), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		job, errMsg, warning := parseJobRow(rows[i], cols, rowLabel, len(result.Jobs))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Jobs = append(result.Jobs, job)
	}
	return result
}
