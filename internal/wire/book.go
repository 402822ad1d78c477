package wire

// Book is the minimal capability both order-book variants expose to the
// decoders in this package. Decoders are parameterized over this
// interface rather than over a concrete type, so a single snapshot/
// incremental decoder pair can drive either the dense (ArrayBook) or the
// sparse (TreeBook) representation.
type Book interface {
	// ID is the instrument identifier this book was configured for.
	ID() uint64

	// AddBid/AddAsk insert, update or remove (qty==0) a level. Implementations
	// return InvalidData when the price cannot be represented (out of the
	// dense grid's range); TreeBook never rejects a finite price.
	AddBid(price float64, qty uint64) error
	AddAsk(price float64, qty uint64) error

	// Clear drops all resting levels. See each variant's doc comment for
	// whether seq_no/timestamp are reset too.
	Clear()

	SeqNo() uint64
	Timestamp() uint64
	SetSeqNo(uint64)
	SetTimestamp(uint64)
}
