// Package vertex decodes raw command-stream vertex data into canonical
// vertex records.
//
// A Decoder is built once per distinct vertex format tag and converts the
// packed source byte layout described by the tag into Vertex values with
// float components. Decoders are deterministic, side-effect-free functions of
// (tag, source bytes, index range) and are memoized in a DecoderCache keyed
// by the full tag including mode bits.
package vertex
