// Package gecore provides the plain data types shared across the ge engine
// and its backends: primitive topologies, index formats, the vertex format
// tag bit layout, clear masks, and the per-batch render state context.
//
// gecore has no dependencies on the engine itself so that backends and
// collaborators can use these types without import cycles.
package gecore
