package seqio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record columns, 1-based.
const (
	ColumnChrom       = 1
	ColumnStart       = 2
	ColumnEnd         = 3
	ColumnStrand      = 4
	ColumnMeasurement = 5

	recordFields = 5
)

// Record is one row of a genomic measurement file:
//
//	chrom start end strand measurement
type Record struct {
	Chrom       string  `json:"chrom"`
	Start       int64   `json:"start"`
	End         int64   `json:"end"`
	Strand      string  `json:"strand"`
	Measurement float64 `json:"measurement"`

	score float64
}

// Score returns the value of the column the record was read with.
func (r Record) Score() float64 {
	return r.score
}

// ReadRecords reads whitespace-separated rows. Blank lines and lines starting
// with '#' are skipped. column selects the numeric column that scores a
// record: ColumnStart, ColumnEnd or ColumnMeasurement. Zero means
// ColumnMeasurement.
func ReadRecords(r io.Reader, column int) ([]Record, error) {
	if column == 0 {
		column = ColumnMeasurement
	}

	if column != ColumnStart && column != ColumnEnd && column != ColumnMeasurement {
		return nil, fmt.Errorf("%w: %d", ErrBadColumn, column)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxTokenSize)

	var (
		records []Record
		line    int
	)

	for sc.Scan() {
		line++

		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		rec, err := parseRecord(strings.Fields(text), column)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, rec)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrNoData
	}

	return records, nil
}

func parseRecord(fields []string, column int) (Record, error) {
	if len(fields) != recordFields {
		return Record{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformed, recordFields, len(fields))
	}

	start, err := strconv.ParseInt(fields[ColumnStart-1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: start %q", ErrMalformed, fields[ColumnStart-1])
	}

	end, err := strconv.ParseInt(fields[ColumnEnd-1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: end %q", ErrMalformed, fields[ColumnEnd-1])
	}

	measurement, err := strconv.ParseFloat(fields[ColumnMeasurement-1], 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: measurement %q", ErrMalformed, fields[ColumnMeasurement-1])
	}

	rec := Record{
		Chrom:       fields[ColumnChrom-1],
		Start:       start,
		End:         end,
		Strand:      fields[ColumnStrand-1],
		Measurement: measurement,
	}

	switch column {
	case ColumnStart:
		rec.score = float64(start)
	case ColumnEnd:
		rec.score = float64(end)
	default:
		rec.score = measurement
	}

	return rec, nil
}
