package diag

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/arloliu/idgraph/compress"
	"github.com/arloliu/idgraph/internal/array"
	"github.com/stretchr/testify/require"
)

func TestMemoryVisitor_Accumulates(t *testing.T) {
	c := array.NewChunked[uint64](4, 0)
	c.Set(0, 1)
	c.Set(5, 1)

	var v MemoryVisitor
	c.Accept("data", &v)

	report := v.Report()
	require.Len(t, report.Entries, 1)
	require.Equal(t, "data", report.Entries[0].Name)
	require.Equal(t, report.Entries[0].LiveBytes, report.TotalLive())
	require.Equal(t, report.Entries[0].ReservedBytes, report.TotalReserved())
}

func TestDump_RoundTripsThroughCodec(t *testing.T) {
	report := Report{Entries: []Entry{
		{Name: "data", LiveBytes: 800, ReservedBytes: 8_000_000},
		{Name: "tracker", LiveBytes: 500, ReservedBytes: 4_000_000},
	}}

	for _, kind := range []compress.Kind{compress.KindNone, compress.KindZstd, compress.KindS2, compress.KindLZ4} {
		codec, err := compress.CreateCodec(kind)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, Dump(&buf, report, codec))

		require.Greater(t, buf.Len(), 4)
		size := binary.LittleEndian.Uint32(buf.Bytes()[:4])
		require.Equal(t, int(size), buf.Len()-4)

		decompressed, err := codec.Decompress(buf.Bytes()[4:])
		require.NoError(t, err)
		require.Greater(t, len(decompressed), 4)
	}
}

func TestReport_Totals_Empty(t *testing.T) {
	var r Report
	require.Equal(t, int64(0), r.TotalLive())
	require.Equal(t, int64(0), r.TotalReserved())
}
