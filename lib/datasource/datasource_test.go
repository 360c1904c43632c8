package datasource

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/hightman/xunsearch/lib/xserror"
)

func readAll(t *testing.T, src Source) []Record {
	t.Helper()
	var recs []Record
	for {
		rec, err := src.Next(context.Background())
		if err == io.EOF {
			return recs
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		recs = append(recs, rec)
	}
}

func TestJSON(t *testing.T) {
	input := `{"pid": 1, "subject": "hello", "price": 9.5}

not json
{}
{"pid": "2", "tags": ["a", "b"], "hot": true}
`
	src := NewJSON(io.NopCloser(strings.NewReader(input)))
	got := readAll(t, src)
	want := []Record{
		{"pid": "1", "subject": "hello", "price": "9.5"},
		{"pid": "2", "tags": `["a","b"]`, "hot": "1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Next() records = %v, want %v", got, want)
	}
	if src.Invalid() != 3 {
		t.Errorf("Invalid() = %d, want 3", src.Invalid())
	}
}

func TestJSONWithoutTrailingNewline(t *testing.T) {
	src := NewJSON(io.NopCloser(strings.NewReader(`{"pid": "7"}`)))
	if got := readAll(t, src); len(got) != 1 || got[0]["pid"] != "7" {
		t.Errorf("Next() records = %v, want one record", got)
	}
}

func TestCSV(t *testing.T) {
	fields := []string{"pid", "subject", "message"}
	tests := []struct {
		name  string
		input string
		delim rune
		want  []Record
	}{
		{
			name:  "scheme order",
			input: "1,hello,world\n2,short\n",
			want:  []Record{{"pid": "1", "subject": "hello", "message": "world"}, {"pid": "2", "subject": "short"}},
		},
		{
			name:  "header row",
			input: "message,pid\nbody,3\n",
			want:  []Record{{"message": "body", "pid": "3"}},
		},
		{
			name:  "tab delimiter",
			input: "4\tx\ty\n",
			delim: '\t',
			want:  []Record{{"pid": "4", "subject": "x", "message": "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewCSV(io.NopCloser(strings.NewReader(tt.input)), tt.delim, fields)
			if got := readAll(t, src); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Next() records = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"", ','},
		{";", ';'},
		{"|x", '|'},
		{`\t`, '\t'},
		{`\\`, '\\'},
		{`\x1f`, 0x1f},
		{`\q`, ','},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDelimiter(tt.in); got != tt.want {
				t.Errorf("ParseDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantDSN   string
		wantTable string
		wantErr   bool
	}{
		{"with table", "pgsql://u:p@db.local/shop/products", "postgres://u:p@db.local/shop?sslmode=disable", "products", false},
		{"keeps sslmode", "postgres://db.local:5433/shop?sslmode=require", "postgres://db.local:5433/shop?sslmode=require", "", false},
		{"missing db", "postgres://db.local/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, table, err := postgresDSN(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("postgresDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if dsn != tt.wantDSN || table != tt.wantTable {
				t.Errorf("postgresDSN() = %v, %v, want %v, %v", dsn, table, tt.wantDSN, tt.wantTable)
			}
		})
	}
}

func TestPostgresLimit(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantSQL    string
		wantLimit  int
		wantOffset int
	}{
		{"limit", "SELECT * FROM t LIMIT 50", "SELECT * FROM t", 50, 0},
		{"limit offset", "SELECT * FROM t limit 50 offset 10", "SELECT * FROM t", 50, 10},
		{"offset comma limit", "SELECT * FROM t LIMIT 10, 50", "SELECT * FROM t", 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Postgres{}
			if err := s.prepare(context.Background(), tt.query, ""); err != nil {
				t.Fatalf("prepare() error = %v", err)
			}
			if s.sql != tt.wantSQL || s.limit != tt.wantLimit || s.offset != tt.wantOffset {
				t.Errorf("prepare() = %q %d %d, want %q %d %d", s.sql, s.limit, s.offset, tt.wantSQL, tt.wantLimit, tt.wantOffset)
			}
		})
	}

	if err := (&Postgres{}).prepare(context.Background(), "", ""); !errors.Is(err, xserror.ErrConfig) {
		t.Errorf("prepare() without query and table error = %v, want config error", err)
	}
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		kind string
	}{
		{"unknown type", "xml"},
		{"unknown driver", "mysql://localhost/db"},
		{"kafka without topic", "kafka://localhost:9092"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(context.Background(), tt.kind, Options{}); !errors.Is(err, xserror.ErrConfig) {
				t.Errorf("Open() error = %v, want config error", err)
			}
		})
	}
}
