package wire

import "fmt"

// DecodeSnapshotInPlace parses one 184-byte snapshot record and applies
// it to the book returned by lookup, clearing any prior state first.
//
// Used by the dense (array) variant, whose books are pre-allocated from
// configuration: a missing id is fatal (BookNotFound). Snapshots are not
// gap-checked — they establish the truth unconditionally.
func DecodeSnapshotInPlace(buf []byte, lookup func(id uint64) (Book, bool)) error {
	id := ReadUint64(buf, SnapshotIDOffset)
	book, found := lookup(id)
	if !found {
		return &BookNotFound{ID: id}
	}

	timestamp := ReadUint64(buf, SnapshotTimestampOffset)
	seqNo := ReadUint64(buf, SnapshotSeqNoOffset)

	book.Clear()
	book.SetTimestamp(timestamp)
	book.SetSeqNo(seqNo)

	return applySnapshotLevels(buf, book)
}

// DecodeSnapshotAlloc parses one 184-byte snapshot record into a freshly
// constructed book, used by the sparse (tree) variant where the
// collection is seeded entirely from the snapshot stream rather than
// from static configuration.
func DecodeSnapshotAlloc(buf []byte, newBook func(id uint64) Book) (Book, error) {
	id := ReadUint64(buf, SnapshotIDOffset)
	timestamp := ReadUint64(buf, SnapshotTimestampOffset)
	seqNo := ReadUint64(buf, SnapshotSeqNoOffset)

	book := newBook(id)
	book.SetTimestamp(timestamp)
	book.SetSeqNo(seqNo)

	if err := applySnapshotLevels(buf, book); err != nil {
		return nil, err
	}
	return book, nil
}

func applySnapshotLevels(buf []byte, book Book) error {
	offset := SnapshotMetadataSize
	for rank := 0; rank < 5; rank++ {
		bidPrice := ReadFloat64(buf, offset)
		offset += LevelPriceSize
		bidQty := ReadUint64(buf, offset)
		offset += LevelQtySize
		if err := book.AddBid(bidPrice, bidQty); err != nil {
			return &InvalidData{Message: fmt.Sprintf("failed to add bid: %s, price: %v, qty: %d", err, bidPrice, bidQty)}
		}

		askPrice := ReadFloat64(buf, offset)
		offset += LevelPriceSize
		askQty := ReadUint64(buf, offset)
		offset += LevelQtySize
		if err := book.AddAsk(askPrice, askQty); err != nil {
			return &InvalidData{Message: fmt.Sprintf("failed to add ask: %s, price: %v, qty: %d", err, askPrice, askQty)}
		}
	}
	return nil
}
