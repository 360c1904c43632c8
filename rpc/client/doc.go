// Package client implements the client side of the xunsearch protocol: a
// blocking command dispatcher and the index, search and segmenter APIs built
// on top of it.
//
// Key Components:
//
//   - Server: one connection to an index or search server. Commands the
//     server never answers (opcodes with the high bit set) are collected in a
//     send buffer and written in front of the next answered command, so a
//     document of many DOC_* commands costs a single round trip. A file
//     transport turns the dispatcher into a recorder: nothing is read and
//     answered commands get a synthesized response.
//
//   - XS: the context of a project. It owns the field scheme and the
//     tokenizer registry and opens the index and search connections on first
//     use. The tokenizer "scws" segments values on the search server.
//
//   - Index: adds, updates and removes documents, manages synonyms, the
//     custom dictionary, rebuilds and the local bulk buffer. Every command is
//     replayed on the replica servers of the project after the primary
//     accepted it. Import feeds a datasource.Source into the index.
//
//   - Search: builds queries from query strings, terms, ranges and weights,
//     counts and fetches results, decodes facets and matched terms, and reads
//     hot, related, expanded and corrected queries from the search log.
//
//   - Scws: the segmenter of the search server.
//
// Usage Example:
//
//	xs, err := client.Load("demo")
//	if err != nil {
//		return err
//	}
//	defer xs.Close()
//
//	search, err := xs.Search()
//	if err != nil {
//		return err
//	}
//	search.SetLimit(5, 0)
//	docs, err := search.Search("subject:xunsearch")
//	for _, doc := range docs {
//		fmt.Println(doc.Rank(), doc.Get("subject"))
//	}
//
// Thread Safety:
//
//	Server, Index, Search and XS are not safe for concurrent use. Create one
//	XS per goroutine, they share nothing but the optional count cache.
package client
