package document

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/hightman/xunsearch/lib/xserror"
)

func resultMeta(docid, rank, ccount uint32, percent int32, weight float32) []byte {
	meta := make([]byte, ResultMetaSize)
	binary.LittleEndian.PutUint32(meta[0:], docid)
	binary.LittleEndian.PutUint32(meta[4:], rank)
	binary.LittleEndian.PutUint32(meta[8:], ccount)
	binary.LittleEndian.PutUint32(meta[12:], uint32(percent))
	binary.LittleEndian.PutUint32(meta[16:], math.Float32bits(weight))
	return meta
}

func TestNewResult(t *testing.T) {
	d, err := NewResult(resultMeta(7, 3, 2, 85, 1.5), "")
	if err != nil {
		t.Fatalf("NewResult() error = %v", err)
	}
	if !d.IsResult() {
		t.Errorf("IsResult() = false, want true")
	}
	if d.DocID() != 7 || d.Rank() != 3 || d.CCount() != 2 || d.Percent() != 85 || d.Weight() != 1.5 {
		t.Errorf("NewResult() meta = %+v", d.Meta())
	}

	if _, err := NewResult([]byte{1, 2, 3}, ""); !errors.Is(err, xserror.ErrEncoding) {
		t.Errorf("NewResult() short meta error = %v, want encoding error", err)
	}
}

func TestResultIsReadOnly(t *testing.T) {
	d, _ := NewResult(resultMeta(1, 1, 0, 100, 1), "")
	if err := d.LoadResultField("subject", []byte("hello")); err != nil {
		t.Fatalf("LoadResultField() error = %v", err)
	}

	if err := d.Set("subject", "changed"); err != ErrReadOnly {
		t.Errorf("Set() error = %v, want %v", err, ErrReadOnly)
	}
	if err := d.Delete("subject"); err != ErrReadOnly {
		t.Errorf("Delete() error = %v, want %v", err, ErrReadOnly)
	}
	if got := d.Get("subject"); got != "hello" {
		t.Errorf("Get() = %v, want %v", got, "hello")
	}

	if err := New("").LoadResultField("x", nil); err == nil {
		t.Errorf("LoadResultField() on a plain document error = nil")
	}
}

func TestFields(t *testing.T) {
	d := New("")
	_ = d.Set("pid", "1")
	_ = d.Set("subject", "title")
	_ = d.Set("pid", "2")

	if got, want := d.FieldNames(), []string{"pid", "subject"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames() = %v, want %v", got, want)
	}
	if got := d.Get("pid"); got != "2" {
		t.Errorf("Get() = %v, want %v", got, "2")
	}
	if _, ok := d.Lookup("missing"); ok {
		t.Errorf("Lookup() of a missing field ok = true")
	}

	_ = d.Delete("pid")
	if got, want := d.Fields(), map[string]string{"subject": "title"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}

	d.AddTerm("subject", "x", 1)
	d.Reset()
	if len(d.Fields()) != 0 || d.AddTerms("subject") != nil {
		t.Errorf("Reset() left fields %v terms %v", d.Fields(), d.AddTerms("subject"))
	}
}

func TestAddTermAndIndex(t *testing.T) {
	d := New("")
	d.AddTerm("tags", "go", 1)
	d.AddTerm("tags", "rpc", 2)
	d.AddTerm("tags", "go", 3)
	d.AddIndex("body", "first")
	d.AddIndex("body", "second")

	want := []TermWeight{{"go", 4}, {"rpc", 2}}
	if got := d.AddTerms("tags"); !reflect.DeepEqual(got, want) {
		t.Errorf("AddTerms() = %v, want %v", got, want)
	}
	if got, ok := d.AddIndexText("body"); !ok || got != "first\nsecond" {
		t.Errorf("AddIndexText() = %q, %v, want %q", got, ok, "first\nsecond")
	}
	if _, ok := d.AddIndexText("tags"); ok {
		t.Errorf("AddIndexText() of a field without text ok = true")
	}
}

func TestCharset(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"utf8 alias", "utf8", "UTF-8"},
		{"lower case", "gbk", "GBK"},
		{"already normalized", "UTF-8", "UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.in).Charset(); got != tt.want {
				t.Errorf("Charset() = %v, want %v", got, tt.want)
			}
		})
	}

	d := New("")
	d.BeforeSubmit("big5")
	if d.Charset() != "BIG5" {
		t.Errorf("BeforeSubmit() charset = %v, want BIG5", d.Charset())
	}
	d.BeforeSubmit("GBK")
	if d.Charset() != "BIG5" {
		t.Errorf("BeforeSubmit() overwrote charset %v", d.Charset())
	}
}

const (
	utf8Text = "中文"
	gbkText  = "\xd6\xd0\xce\xc4"
)

func TestConvert(t *testing.T) {
	got, err := Convert(utf8Text, "GBK", "UTF-8")
	if err != nil || got != gbkText {
		t.Errorf("Convert() to GBK = %q, %v, want %q", got, err, gbkText)
	}
	got, err = Convert(gbkText, "utf8", "gbk")
	if err != nil || got != utf8Text {
		t.Errorf("Convert() from GBK = %q, %v, want %q", got, err, utf8Text)
	}
	if _, err := Convert(utf8Text, "NO-SUCH-CHARSET", "UTF-8"); !errors.Is(err, xserror.ErrEncoding) {
		t.Errorf("Convert() unknown charset error = %v, want encoding error", err)
	}
}

func TestAutoConvert(t *testing.T) {
	// documents to index hand out UTF-8
	d := New("GBK")
	_ = d.Set("subject", gbkText)
	_ = d.Set("ascii", "plain")
	if got := d.Get("subject"); got != utf8Text {
		t.Errorf("Get() = %q, want %q", got, utf8Text)
	}
	if got := d.Get("ascii"); got != "plain" {
		t.Errorf("Get() = %q, want %q", got, "plain")
	}

	// result documents hand out the caller charset
	r, _ := NewResult(resultMeta(1, 1, 0, 100, 1), "GBK")
	_ = r.LoadResultField("subject", []byte(utf8Text))
	if got := r.Get("subject"); got != gbkText {
		t.Errorf("Get() on result = %q, want %q", got, gbkText)
	}
}
