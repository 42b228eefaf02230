// Package compress provides pluggable compression codecs for diagnostic
// snapshot exports.
//
// The mapper's hot path (Put, Prepare, Get) never touches this package; it
// exists solely for diag.Dump, which compresses a memory-usage report before
// writing it out for operators. Four codecs are available:
//   - None: no compression, useful for debugging the raw report
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// All codecs implement the Codec interface and are safe for concurrent use.
package compress
