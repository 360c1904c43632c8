// Package document implements the document model shared by indexing and
// searching, plus the charset conversion used for documents and queries.
//
// A document to index is a set of field values in the caller's charset,
// optionally extended with extra terms (with weights) and extra texts per
// field. A result document additionally carries the ranking metadata sent by
// the server and is read-only.
//
// All text is UTF-8 on the wire. Values are converted lazily when they are
// read and only if they contain bytes in the range 0x81-0xfe.
package document
