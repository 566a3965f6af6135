package staging

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// Column names recognised in the staging CSV header.  Matching is
// case-insensitive; unknown columns are ignored.
const (
	colPatentNumber = "patent_number"
	colTitle        = "title"
	colAssignee     = "assignee"
	colCountryCode  = "country_code"
	colFilingYear   = "filing_year"
	colGrantYear    = "grant_year"
	colAbstract     = "abstract"
	colIPCClass     = "ipc_class"
)

// ParseCSV reads a flat source file into RawRecords.  The first row must be
// a header naming at least the patent_number column.  Empty or non-numeric
// year cells become nil years rather than errors; the pipeline tolerates
// sparse source data by design of the downstream skip rules.
func ParseCSV(r io.Reader) ([]*RawRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.InvalidParam("staging csv is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read csv header")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := idx[colPatentNumber]; !ok {
		return nil, errors.InvalidParam("staging csv header is missing patent_number column")
	}

	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []*RawRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidParam,
				fmt.Sprintf("failed to read csv line %d", line))
		}

		records = append(records, &RawRecord{
			ID:           uuid.New(),
			PatentNumber: cell(row, colPatentNumber),
			Title:        cell(row, colTitle),
			Assignee:     cell(row, colAssignee),
			CountryCode:  cell(row, colCountryCode),
			FilingYear:   parseYear(cell(row, colFilingYear)),
			GrantYear:    parseYear(cell(row, colGrantYear)),
			Abstract:     cell(row, colAbstract),
			IPCClass:     cell(row, colIPCClass),
			IngestedAt:   time.Now().UTC(),
		})
	}

	return records, nil
}

// parseYear converts a cell to a year pointer.  Anything that is not a
// plausible four-digit-era integer comes back nil.
func parseYear(s string) *int {
	if s == "" {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 || y > 9999 {
		return nil
	}
	return &y
}
