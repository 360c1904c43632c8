package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"
)

// CSV reads comma (or otherwise) separated rows. If every value of the first
// row is a known field name the row names the columns, otherwise columns
// are mapped to the fields in scheme order.
type CSV struct {
	r       io.ReadCloser
	cr      *csv.Reader
	fields  []string
	header  bool
	line    int
	invalid int
}

// NewCSV creates a csv source
func NewCSV(r io.ReadCloser, delim rune, fields []string) *CSV {
	cr := csv.NewReader(r)
	if delim != 0 {
		cr.Comma = delim
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &CSV{r: r, cr: cr, fields: fields}
}

func (s *CSV) Next(ctx context.Context) (Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := s.cr.Read()
		if err == io.EOF {
			Logger.Infof("reach end of file, total lines: %d", s.line)
			return nil, err
		}
		s.line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				Logger.Warningf("invalid csv line #%d: %v", s.line, err)
				s.invalid++
				continue
			}
			return nil, err
		}

		if !s.header {
			s.header = true
			if s.isHeader(row) {
				s.fields = row
				Logger.Infof("csv fields are set to: %s", strings.Join(row, ","))
				continue
			}
		}

		rec := make(Record, len(row))
		for i, name := range s.fields {
			if i >= len(row) {
				break
			}
			rec[name] = row[i]
		}
		return rec, nil
	}
}

func (s *CSV) isHeader(row []string) bool {
	for _, v := range row {
		if !slices.Contains(s.fields, v) {
			return false
		}
	}
	return true
}

func (s *CSV) Charset() string { return "" }
func (s *CSV) Invalid() int    { return s.invalid }
func (s *CSV) Close() error    { return s.r.Close() }
