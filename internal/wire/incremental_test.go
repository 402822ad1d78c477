package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekrestinin/orderbook-collection/internal/treebook"
	. "github.com/ekrestinin/orderbook-collection/internal/wire"
)

func buildIncremental(timestamp, seqNo, id uint64, updates [][3]interface{}) []byte {
	buf := make([]byte, 0, UpdateMetadataSize+len(updates)*UpdateLevelSize)
	buf = putU64(buf, timestamp)
	buf = putU64(buf, seqNo)
	buf = putU64(buf, id)
	buf = putU64(buf, uint64(len(updates)))
	for _, u := range updates {
		side := u[0].(byte)
		price := u[1].(float64)
		qty := u[2].(uint64)
		buf = append(buf, side)
		buf = putF64(buf, price)
		buf = putU64(buf, qty)
	}
	return buf
}

func lookupFor(books map[uint64]Book) func(uint64) (Book, bool) {
	return func(id uint64) (Book, bool) {
		b, ok := books[id]
		return b, ok
	}
}

func TestDecodeIncrementalApply(t *testing.T) {
	book := treebook.New(3)
	book.SetSeqNo(1)
	book.SetTimestamp(1)
	require.NoError(t, book.AddBid(100.0, 10))
	require.NoError(t, book.AddAsk(101.0, 5))

	books := map[uint64]Book{3: book}
	buf := buildIncremental(2, 2, 3, [][3]interface{}{
		{SideBid, 100.0, uint64(10)},
		{SideAsk, 101.0, uint64(5)},
	})

	n, err := DecodeIncremental(buf, lookupFor(books))
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, uint64(2), book.SeqNo())
	assert.Equal(t, uint64(2), book.Timestamp())
}

func TestDecodeIncrementalGapDetected(t *testing.T) {
	book := treebook.New(3)
	book.SetSeqNo(1)
	book.SetTimestamp(1)
	require.NoError(t, book.AddBid(100.0, 10))

	books := map[uint64]Book{3: book}
	buf := buildIncremental(2, 4, 3, [][3]interface{}{
		{SideBid, 100.0, uint64(15)},
	})

	_, err := DecodeIncremental(buf, lookupFor(books))
	require.Error(t, err)
	var gap *GapDetected
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, len(buf), gap.ConsumedBytes)

	// State unchanged.
	assert.Equal(t, uint64(1), book.SeqNo())
	assert.Equal(t, uint64(1), book.Timestamp())
	assert.Equal(t, []treebook.Level{{100.0, 10}}, book.GetBids())
}

func TestDecodeIncrementalStaleSkipped(t *testing.T) {
	book := treebook.New(3)
	book.SetSeqNo(3)
	book.SetTimestamp(2)
	require.NoError(t, book.AddBid(100.0, 10))

	books := map[uint64]Book{3: book}
	buf := buildIncremental(1, 2, 3, [][3]interface{}{
		{SideBid, 100.0, uint64(15)},
	})

	n, err := DecodeIncremental(buf, lookupFor(books))
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	assert.Equal(t, uint64(3), book.SeqNo())
	assert.Equal(t, uint64(2), book.Timestamp())
	assert.Equal(t, []treebook.Level{{100.0, 10}}, book.GetBids())
}

func TestDecodeIncrementalBookNotFound(t *testing.T) {
	books := map[uint64]Book{}
	buf := buildIncremental(1, 1, 99, [][3]interface{}{
		{SideBid, 100.0, uint64(1)},
	})

	_, err := DecodeIncremental(buf, lookupFor(books))
	require.Error(t, err)
	var notFound *BookNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestDecodeIncrementalBufferTooSmall(t *testing.T) {
	buf := []byte{1, 2, 3}
	_, err := DecodeIncremental(buf, lookupFor(nil))
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestDecodeIncrementalSeqNoEquality(t *testing.T) {
	book := treebook.New(3)
	book.SetSeqNo(2)
	book.SetTimestamp(1)
	require.NoError(t, book.AddBid(100.0, 10))

	books := map[uint64]Book{3: book}
	// seq_no == book.seq_no: idempotent replay, still applies.
	buf := buildIncremental(5, 2, 3, [][3]interface{}{
		{SideBid, 100.0, uint64(99)},
	})

	_, err := DecodeIncremental(buf, lookupFor(books))
	require.NoError(t, err)
	assert.Equal(t, uint64(99), book.GetBids()[0].Qty)
	assert.Equal(t, uint64(5), book.Timestamp())
}
