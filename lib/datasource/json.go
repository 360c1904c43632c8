package datasource

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// JSON reads one json object per line
type JSON struct {
	r       io.ReadCloser
	br      *bufio.Reader
	line    int
	invalid int
}

// NewJSON creates a json lines source
func NewJSON(r io.ReadCloser) *JSON {
	return &JSON{r: r, br: bufio.NewReader(r)}
}

func (s *JSON) Next(ctx context.Context) (Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := s.br.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				Logger.Infof("reach end of the file, total lines: %d", s.line)
			}
			return nil, err
		}

		s.line++
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			Logger.Warningf("empty line #%d", s.line)
			s.invalid++
			continue
		}

		var item map[string]any
		if jerr := json.Unmarshal([]byte(line), &item); jerr != nil || len(item) == 0 {
			reason := "Empty object"
			if jerr != nil {
				reason = jerr.Error()
			}
			Logger.Warningf("invalid line #%d - %s", s.line, reason)
			s.invalid++
			continue
		}

		rec := make(Record, len(item))
		for k, v := range item {
			rec[k] = stringify(v)
		}
		return rec, nil
	}
}

func (s *JSON) Charset() string { return "UTF-8" }
func (s *JSON) Invalid() int    { return s.invalid }
func (s *JSON) Close() error    { return s.r.Close() }

// stringify renders a decoded json value as field value
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
