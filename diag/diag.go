// Package diag provides a one-way diagnostics export of the mapper's
// memory footprint: it is a read-only snapshot for operators, never a
// durable or re-importable format, so it does not reintroduce the
// durability this system otherwise has no use for.
package diag

import (
	"fmt"
	"io"

	"github.com/arloliu/idgraph/compress"
	"github.com/arloliu/idgraph/endian"
	"github.com/arloliu/idgraph/internal/array"
	"github.com/arloliu/idgraph/internal/pool"
)

// Entry is one reported array's memory footprint.
type Entry struct {
	Name          string
	LiveBytes     int64
	ReservedBytes int64
}

// Report accumulates every Entry reported via AcceptMemoryStats.
type Report struct {
	Entries []Entry
}

// TotalLive returns the sum of every entry's live bytes.
func (r Report) TotalLive() int64 {
	var total int64
	for _, e := range r.Entries {
		total += e.LiveBytes
	}

	return total
}

// TotalReserved returns the sum of every entry's reserved bytes.
func (r Report) TotalReserved() int64 {
	var total int64
	for _, e := range r.Entries {
		total += e.ReservedBytes
	}

	return total
}

// MemoryVisitor collects array.MemoryStats callbacks into a Report.
type MemoryVisitor struct {
	report Report
}

// Visit implements array.Visitor.
func (v *MemoryVisitor) Visit(s array.MemoryStats) {
	v.report.Entries = append(v.report.Entries, Entry{
		Name:          s.Name,
		LiveBytes:     s.LiveBytes,
		ReservedBytes: s.ReservedBytes,
	})
}

// Report returns the accumulated report.
func (v *MemoryVisitor) Report() Report {
	return v.report
}

// Dump serializes report to w, assembling the payload in a pooled byte
// buffer so the compressed snapshot goes out in a single Write call after
// the Write of its size header. Format: a
// 4-byte entry count, then per entry a 2-byte name length, the name bytes,
// and two 8-byte byte counts, all compressed as one block behind a 4-byte
// compressed-size header.
func Dump(w io.Writer, report Report, codec compress.Codec) error {
	buf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(buf)

	engine := endian.GetLittleEndianEngine()

	var header [4]byte
	engine.PutUint32(header[:], uint32(len(report.Entries)))
	buf.MustWrite(header[:])

	for _, e := range report.Entries {
		var nameLen [2]byte
		engine.PutUint16(nameLen[:], uint16(len(e.Name)))
		buf.MustWrite(nameLen[:])
		buf.MustWrite([]byte(e.Name))

		var counts [16]byte
		engine.PutUint64(counts[0:8], uint64(e.LiveBytes))
		engine.PutUint64(counts[8:16], uint64(e.ReservedBytes))
		buf.MustWrite(counts[:])
	}

	compressed, err := codec.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("diag: compress report: %w", err)
	}

	var sizeHeader [4]byte
	engine.PutUint32(sizeHeader[:], uint32(len(compressed)))
	if _, err := w.Write(sizeHeader[:]); err != nil {
		return fmt.Errorf("diag: write size header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("diag: write report: %w", err)
	}

	return nil
}
