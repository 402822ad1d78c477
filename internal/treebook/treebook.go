// Package treebook implements the sparse, price-ordered order book used
// for instruments with an unbounded or very wide price domain.
//
// Go has no built-in ordered map, so each side is a plain
// map[float64]uint64 plus a sort pass on read — the same approach the
// retrieved corpus's other sparse book implementations use (collect
// present prices, sort ascending/descending, materialize). Levels are
// rare relative to reads in this workload's access pattern (snapshot
// once, read many), so paying the sort cost at read time rather than
// maintaining a balanced tree on every write is the simpler and, for the
// level counts this system deals with (tens of levels per side), the
// faster choice.
package treebook

import (
	"fmt"
	"sort"

	"github.com/ekrestinin/orderbook-collection/internal/wire"
)

// Level is a materialized (price, qty) pair.
type Level struct {
	Price float64
	Qty   uint64
}

// Book is the sparse order book for one instrument.
type Book struct {
	IDVal        uint64
	SeqNoVal     uint64
	TimestampVal uint64

	bids map[float64]uint64
	asks map[float64]uint64
}

// New creates an empty book for the given instrument id.
func New(id uint64) *Book {
	return &Book{
		IDVal: id,
		bids:  make(map[float64]uint64),
		asks:  make(map[float64]uint64),
	}
}

func (b *Book) ID() uint64 { return b.IDVal }

func (b *Book) SeqNo() uint64         { return b.SeqNoVal }
func (b *Book) Timestamp() uint64     { return b.TimestampVal }
func (b *Book) SetSeqNo(v uint64)     { b.SeqNoVal = v }
func (b *Book) SetTimestamp(v uint64) { b.TimestampVal = v }

// AddBid inserts or overwrites a bid level when qty>0, removes it when
// qty==0. NaN prices are rejected: callers upstream must guarantee no
// NaN reaches the wire (spec.md §9); encountering one here is treated as
// invalid data rather than silently corrupting iteration order.
func (b *Book) AddBid(price float64, qty uint64) error {
	return addLevel(b.bids, price, qty)
}

// AddAsk is AddBid's ask-side counterpart.
func (b *Book) AddAsk(price float64, qty uint64) error {
	return addLevel(b.asks, price, qty)
}

func addLevel(side map[float64]uint64, price float64, qty uint64) error {
	if price != price { // NaN check without importing math for one comparison.
		return &wire.InvalidData{Message: "price is NaN"}
	}
	if qty == 0 {
		delete(side, price)
		return nil
	}
	side[price] = qty
	return nil
}

// GetBids returns resting bid levels in descending price order.
func (b *Book) GetBids() []Level {
	return sortedLevels(b.bids, true)
}

// GetAsks returns resting ask levels in ascending price order.
func (b *Book) GetAsks() []Level {
	return sortedLevels(b.asks, false)
}

func sortedLevels(side map[float64]uint64, descending bool) []Level {
	prices := make([]float64, 0, len(side))
	for p := range side {
		prices = append(prices, p)
	}
	if descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	} else {
		sort.Float64s(prices)
	}
	out := make([]Level, len(prices))
	for i, p := range prices {
		out[i] = Level{Price: p, Qty: side[p]}
	}
	return out
}

// BestBid is the first bid in descending order; WorstBid the last.
func (b *Book) BestBid() (Level, bool)  { return edge(b.GetBids()) }
func (b *Book) BestAsk() (Level, bool)  { return edge(b.GetAsks()) }
func (b *Book) WorstBid() (Level, bool) { return edgeLast(b.GetBids()) }
func (b *Book) WorstAsk() (Level, bool) { return edgeLast(b.GetAsks()) }

func edge(levels []Level) (Level, bool) {
	if len(levels) == 0 {
		return Level{}, false
	}
	return levels[0], true
}

func edgeLast(levels []Level) (Level, bool) {
	if len(levels) == 0 {
		return Level{}, false
	}
	return levels[len(levels)-1], true
}

// Clear empties both sides. Unlike ArrayBook.Clear, this does NOT reset
// seq_no/timestamp — an intentional asymmetry carried over from the
// original implementation and preserved rather than guessed at; see
// spec.md §9. The snapshot decoder overwrites both fields immediately
// after calling Clear, so the two variants behave identically from that
// call site.
func (b *Book) Clear() {
	b.bids = make(map[float64]uint64)
	b.asks = make(map[float64]uint64)
}

// String renders the book the way the original Rust Debug impl did.
func (b *Book) String() string {
	return fmt.Sprintf("OrderBook(id: %d, seq_no: %d, timestamp: %d, bids: %v, asks: %v)",
		b.IDVal, b.SeqNoVal, b.TimestampVal, b.GetBids(), b.GetAsks())
}

var _ wire.Book = (*Book)(nil)
