package chunkindex

import "slices"

// Stats is a snapshot of the loaded index.
type Stats struct {
	Records      int      // number of records
	ArenaBytes   int      // size of the backing byte arena
	VectorFloats int      // total float32 values across all embeddings
	Dimensions   []uint32 // distinct embedding dimensionalities, ascending
}

// Stats returns a snapshot of the loaded index.
func (ci *Index) Stats() Stats {
	dims := make([]uint32, 0, len(ci.dims))
	for d := range ci.dims {
		dims = append(dims, d)
	}
	slices.Sort(dims)

	return Stats{
		Records:      len(ci.chunks),
		ArenaBytes:   len(ci.arena),
		VectorFloats: len(ci.slab),
		Dimensions:   dims,
	}
}
