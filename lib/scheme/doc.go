// Package scheme describes the fields of a project.
//
// A FieldScheme is built once from the project file and shared read-only by
// the indexer, the searcher and the documents. Each field (FieldMeta) has a
// type (string, numeric, date, id, title, body), index flags (own prefix,
// mixed area or both, positions, boolean vs. ranked), a weight, a cut length
// for highlighting and an optional client side tokenizer.
//
// The scheme assigns slot numbers (vno) in insertion order, the body field
// always uses slot 255. The id field is moved to the front so that it is
// the first value sent for every document.
package scheme
