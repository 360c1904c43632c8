package document

import (
	"encoding/binary"
	"math"

	"github.com/hightman/xunsearch/lib/xserror"
)

// ResultMetaSize is the size of the metadata block of a result document
const ResultMetaSize = 20

// ErrReadOnly is returned when fields of a result document are changed
var ErrReadOnly = &xserror.EncodingError{Msg: "Magick property of result document is read-only"}

// Meta is the ranking information the server attaches to a result document
type Meta struct {
	DocID   uint32
	Rank    uint32
	CCount  uint32
	Percent int32
	Weight  float32
	Matched []string
}

// TermWeight is an extra term of a document together with its weight
type TermWeight struct {
	Term   string
	Weight int
}

type termList struct {
	order   []string
	weights map[string]int
}

// Document is either a document to index (built by the caller) or a search
// result (built by the result decoder, fields are read-only).
//
// Values are stored in the document charset. Getters return UTF-8 for
// documents to index and the document charset for search results.
type Document struct {
	data    map[string]string
	order   []string
	terms   map[string]*termList
	texts   map[string]string
	charset string
	meta    *Meta
}

// New creates an empty document. An empty charset means the project default
// is used when the document is submitted.
func New(charset string) *Document {
	d := &Document{data: make(map[string]string)}
	if charset != "" {
		d.SetCharset(charset)
	}
	return d
}

// NewWithFields creates a document from a set of field values
func NewWithFields(fields map[string]string, charset string) *Document {
	d := New(charset)
	for name, value := range fields {
		d.set(name, value)
	}
	return d
}

// NewResult creates a result document from the 20 byte metadata block sent
// by the server: docid, rank, ccount (uint32), percent (int32), weight
// (float32), all little endian.
func NewResult(meta []byte, charset string) (*Document, error) {
	if len(meta) != ResultMetaSize {
		return nil, xserror.NewEncodingError("Invalid result document meta of %d bytes", len(meta))
	}
	d := New(charset)
	d.meta = &Meta{
		DocID:   binary.LittleEndian.Uint32(meta[0:4]),
		Rank:    binary.LittleEndian.Uint32(meta[4:8]),
		CCount:  binary.LittleEndian.Uint32(meta[8:12]),
		Percent: int32(binary.LittleEndian.Uint32(meta[12:16])),
		Weight:  math.Float32frombits(binary.LittleEndian.Uint32(meta[16:20])),
	}
	return d, nil
}

// --------------------------------------------------------------------------
// Charset
// --------------------------------------------------------------------------

// Charset returns the charset of the document, empty if not yet set
func (d *Document) Charset() string { return d.charset }

// SetCharset sets the charset of the document values
func (d *Document) SetCharset(charset string) {
	d.charset = NormalizeCharset(charset)
}

// BeforeSubmit is called by the indexer before the document is encoded
func (d *Document) BeforeSubmit(defaultCharset string) {
	if d.charset == "" {
		d.SetCharset(defaultCharset)
	}
}

// --------------------------------------------------------------------------
// Fields
// --------------------------------------------------------------------------

// Get returns the value of a field, converted for the caller
func (d *Document) Get(name string) string {
	v, _ := d.Lookup(name)
	return v
}

// Lookup returns the value of a field and whether it is set
func (d *Document) Lookup(name string) (string, bool) {
	v, ok := d.data[name]
	if !ok {
		return "", false
	}
	return d.autoConvert(v), true
}

// Set sets the value of a field. Result documents are read-only.
func (d *Document) Set(name, value string) error {
	if d.meta != nil {
		return ErrReadOnly
	}
	d.set(name, value)
	return nil
}

// Delete removes a field. Result documents are read-only.
func (d *Document) Delete(name string) error {
	if d.meta != nil {
		return ErrReadOnly
	}
	if _, ok := d.data[name]; ok {
		delete(d.data, name)
		for i, n := range d.order {
			if n == name {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// SetFields merges the given values into the document
func (d *Document) SetFields(fields map[string]string) error {
	if d.meta != nil {
		return ErrReadOnly
	}
	for name, value := range fields {
		d.set(name, value)
	}
	return nil
}

// Reset removes all fields, extra terms, extra texts and result metadata
func (d *Document) Reset() {
	d.data = make(map[string]string)
	d.order = nil
	d.terms = nil
	d.texts = nil
	d.meta = nil
}

// Fields returns all values, converted for the caller
func (d *Document) Fields() map[string]string {
	fields := make(map[string]string, len(d.data))
	for name, v := range d.data {
		fields[name] = d.autoConvert(v)
	}
	return fields
}

// FieldNames returns the names of all set fields in the order they were set
func (d *Document) FieldNames() []string {
	return append([]string(nil), d.order...)
}

// LoadResultField sets a field of a result document while it is decoded
func (d *Document) LoadResultField(name string, value []byte) error {
	if d.meta == nil {
		return xserror.NewEncodingError("Not a result document")
	}
	d.set(name, string(value))
	return nil
}

func (d *Document) set(name, value string) {
	if _, ok := d.data[name]; !ok {
		d.order = append(d.order, name)
	}
	d.data[name] = value
}

// --------------------------------------------------------------------------
// Extra Terms and Texts
// --------------------------------------------------------------------------

// AddTerm adds an extra term to a field. Weights of repeated terms add up.
func (d *Document) AddTerm(field, term string, weight int) {
	if d.terms == nil {
		d.terms = make(map[string]*termList)
	}
	list, ok := d.terms[field]
	if !ok {
		list = &termList{weights: make(map[string]int)}
		d.terms[field] = list
	}
	if _, ok := list.weights[term]; !ok {
		list.order = append(list.order, term)
	}
	list.weights[term] += weight
}

// AddIndex adds extra text to be indexed for a field. Texts of repeated calls
// are joined with a newline.
func (d *Document) AddIndex(field, text string) {
	if d.texts == nil {
		d.texts = make(map[string]string)
	}
	if prev, ok := d.texts[field]; ok {
		d.texts[field] = prev + "\n" + text
	} else {
		d.texts[field] = text
	}
}

// AddTerms returns the extra terms of a field in insertion order, nil if none
func (d *Document) AddTerms(field string) []TermWeight {
	list, ok := d.terms[field]
	if !ok {
		return nil
	}
	terms := make([]TermWeight, 0, len(list.order))
	for _, term := range list.order {
		terms = append(terms, TermWeight{Term: d.autoConvert(term), Weight: list.weights[term]})
	}
	return terms
}

// AddIndexText returns the extra text of a field
func (d *Document) AddIndexText(field string) (string, bool) {
	text, ok := d.texts[field]
	if !ok {
		return "", false
	}
	return d.autoConvert(text), true
}

// --------------------------------------------------------------------------
// Result Metadata
// --------------------------------------------------------------------------

// IsResult reports whether the document was returned by a search
func (d *Document) IsResult() bool { return d.meta != nil }

// Meta returns the result metadata, nil for documents to index
func (d *Document) Meta() *Meta { return d.meta }

// DocID returns the internal document id of a result document
func (d *Document) DocID() uint32 { return d.metaOrZero().DocID }

// Rank returns the position of a result document in the result set
func (d *Document) Rank() uint32 { return d.metaOrZero().Rank }

// CCount returns the number of collapsed documents
func (d *Document) CCount() uint32 { return d.metaOrZero().CCount }

// Percent returns the relevance of a result document in percent
func (d *Document) Percent() int32 { return d.metaOrZero().Percent }

// Weight returns the relevance weight of a result document
func (d *Document) Weight() float32 { return d.metaOrZero().Weight }

// Matched returns the query terms the result document matched
func (d *Document) Matched() []string { return d.metaOrZero().Matched }

// SetMatched stores the matched terms of a result document
func (d *Document) SetMatched(terms []string) {
	if d.meta != nil {
		d.meta.Matched = terms
	}
}

func (d *Document) metaOrZero() *Meta {
	if d.meta == nil {
		return &Meta{}
	}
	return d.meta
}

// autoConvert converts values of non UTF-8 documents: documents to index
// are converted to UTF-8, result documents from UTF-8 to their charset.
func (d *Document) autoConvert(value string) string {
	if d.charset == "" || d.charset == UTF8 || !NeedsConvert(value) {
		return value
	}
	from, to := d.charset, UTF8
	if d.meta != nil {
		from, to = UTF8, d.charset
	}
	converted, err := Convert(value, to, from)
	if err != nil {
		return value
	}
	return converted
}
