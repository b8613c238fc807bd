// Package chunkindex provides a binary-file-backed vector index for
// retrieving the most semantically relevant source-code chunks for a query
// embedding. It is the retrieval backend of a RAG pipeline: an external
// builder produces the index file, this package loads it and answers
// bounded top-K nearest-neighbor queries over unit-normalized embeddings.
//
// # Quick Start
//
//	ctx := context.Background()
//	ci, err := chunkindex.Load(ctx, "chunks.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ci.Close()
//
//	// query must already be unit-normalized by the caller.
//	results, err := ci.Search(ctx, query, 5)
//	for _, r := range results {
//	    text, _ := ci.Text(r.Index)
//	    fmt.Println(r.Score, text)
//	}
//
// # File Format
//
// The index file is little-endian with no alignment padding: a uint32
// record count, then per record four length-prefixed strings (id, parent,
// file, ext), the uint32 start/end line numbers, the length-prefixed chunk
// text, the uint32 embedding dimension, and the raw float32 embedding.
// Files compressed as a single zstd frame are detected by magic and
// decompressed transparently.
//
// The whole file is read into one arena buffer in a single pass. String
// accessors return zero-copy views into that arena, valid until Close.
// Every embedding is re-normalized to unit length at load time, whatever
// its on-disk state; queries are trusted to be normalized by the caller.
// Because both sides are unit vectors, cosine similarity degenerates to a
// plain dot product, which is what Search ranks by.
//
// # Search Semantics
//
// Search scans all records whose dimension matches the query (records with
// other dimensions are silently skipped, never an error) and retains the K
// highest dot-product scores in a bounded min-heap. Results are returned in
// heap order, not rank order; sorting by descending score is the caller's
// responsibility. The loaded index is immutable, so any number of searches
// may run concurrently.
package chunkindex
