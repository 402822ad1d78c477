package wire

import "fmt"

// DecodeIncremental parses one variable-length incremental record at the
// start of buf and applies it to the book found via lookup. It returns
// the number of bytes consumed so the caller can advance its cursor.
//
// Processing order follows spec.md §4.5 exactly:
//  1. buf must hold at least one header plus one level, else ErrBufferTooSmall.
//  2. the header is parsed and the full record size computed.
//  3. buf must hold the full record, else ErrBufferTooSmall.
//  4. the book is looked up; a miss is fatal (BookNotFound).
//  5. seq_no is compared against the book's current seq_no:
//     stale (less than current) -> silently skipped, consumed bytes returned;
//     gapped (more than current+1 ahead) -> GapDetected, non-fatal;
//     otherwise (equal to current, permitting idempotent replay, or
//     exactly current+1) -> applied.
//  6. on apply, timestamp/seq_no are updated first, then each level is
//     dispatched to AddBid/AddAsk in order.
func DecodeIncremental(buf []byte, lookup func(id uint64) (Book, bool)) (int, error) {
	if len(buf) < UpdateMetadataSize+UpdateLevelSize {
		return 0, ErrBufferTooSmall
	}

	timestamp := ReadUint64(buf, UpdateTimestampOffset)
	seqNo := ReadUint64(buf, UpdateSeqNoOffset)
	id := ReadUint64(buf, UpdateIDOffset)
	numUpdates := int(ReadUint64(buf, UpdateNumUpdatesOffset))

	expectedEnd := UpdateMetadataSize + numUpdates*UpdateLevelSize
	if len(buf) < expectedEnd {
		return 0, ErrBufferTooSmall
	}

	book, found := lookup(id)
	if !found {
		return 0, &BookNotFound{ID: id}
	}

	current := book.SeqNo()
	if seqNo < current {
		// Stale update: skip silently, bytes still consumed.
		return expectedEnd, nil
	}
	if seqNo > current+1 {
		return 0, &GapDetected{ID: id, ConsumedBytes: expectedEnd}
	}

	book.SetTimestamp(timestamp)
	book.SetSeqNo(seqNo)

	offset := UpdateMetadataSize
	for i := 0; i < numUpdates; i++ {
		side := buf[offset]
		offset += LevelSideSize
		price := ReadFloat64(buf, offset)
		offset += LevelPriceSize
		qty := ReadUint64(buf, offset)
		offset += LevelQtySize

		var err error
		if side == SideBid {
			err = book.AddBid(price, qty)
		} else {
			err = book.AddAsk(price, qty)
		}
		if err != nil {
			return 0, &InvalidData{Message: fmt.Sprintf("failed to apply level: %s, side: %d, price: %v, qty: %d", err, side, price, qty)}
		}
	}

	return offset, nil
}
