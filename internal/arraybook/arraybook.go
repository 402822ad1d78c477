// Package arraybook implements the dense, fixed-price-grid order book.
//
// Each side is a statically-sized set of parallel slices indexed by
// price_index = round((price - min_price) / tick_size), threaded
// together by an intrusive doubly-linked list of *present* indices kept
// in the side's sort order (descending for bids, ascending for asks).
// List nodes are identified by integer index into the slices, never by
// pointer, mirroring the arena-of-indices idiom the teacher matching
// engine uses for its pricePoints/orderBookEntry arrays: no heap churn
// on the hot path, and the whole side lives in one cache-friendly block.
package arraybook

import (
	"fmt"
	"math"

	"github.com/ekrestinin/orderbook-collection/internal/wire"
)

// MaxLevels bounds how large a single side's price grid may be.
const MaxLevels = 1_000_000

// empty is the sentinel marking absence / list-end, analogous to the
// teacher's EMPTY convention but sized for a slice index rather than a
// fixed-width integer.
const empty = -1

// Config describes one instrument's price grid.
type Config struct {
	ID       uint64
	MinPrice float64
	MaxPrice float64
	TickSize float64
}

// Levels returns the number of price slots this configuration implies.
func (c Config) Levels() int {
	return int(math.Round((c.MaxPrice-c.MinPrice)/c.TickSize)) + 1
}

// side is one half (bids or asks) of a Book: an intrusive linked list of
// present indices layered over parallel arrays.
type side struct {
	volumes      []uint64
	next         []int
	prev         []int
	head         int
	isDescending bool
}

func newSide(capacity int, isDescending bool) *side {
	next := make([]int, capacity)
	prev := make([]int, capacity)
	for i := range next {
		next[i] = empty
		prev[i] = empty
	}
	return &side{
		volumes:      make([]uint64, capacity),
		next:         next,
		prev:         prev,
		head:         empty,
		isDescending: isDescending,
	}
}

// insert threads index into the list, preserving sort order. It scans
// linearly from head: tolerable because active levels near the top of
// book dominate updates, and the array's real win is O(1) volume lookup
// and cache-friendly traversal, not insertion.
func (s *side) insert(index int) {
	if s.head == empty {
		s.head = index
		return
	}

	current := s.head
	for current != empty {
		if (s.isDescending && index > current) || (!s.isDescending && index < current) {
			s.next[index] = current
			if s.prev[current] != empty {
				s.next[s.prev[current]] = index
				s.prev[index] = s.prev[current]
			} else {
				s.head = index
			}
			s.prev[current] = index
			return
		}
		current = s.next[current]
	}

	// Insert at the end.
	current = s.head
	for current != empty {
		if s.next[current] == empty {
			s.next[current] = index
			s.prev[index] = current
			break
		}
		current = s.next[current]
	}
}

func (s *side) remove(index int) {
	if s.prev[index] != empty {
		s.next[s.prev[index]] = s.next[index]
	} else {
		s.head = s.next[index]
	}
	if s.next[index] != empty {
		s.prev[s.next[index]] = s.prev[index]
	}
	s.next[index] = empty
	s.prev[index] = empty
}

// update is the sole mutator of a side: it inserts a newly-present
// index, unlinks one that drops to zero, or leaves list shape alone when
// only the volume changes.
func (s *side) update(index int, qty uint64) {
	prevQty := s.volumes[index]
	s.volumes[index] = qty

	if prevQty == 0 && qty > 0 {
		s.insert(index)
	} else if prevQty > 0 && qty == 0 {
		s.remove(index)
	}
}

func (s *side) levels() []indexLevel {
	out := make([]indexLevel, 0, 8)
	for current := s.head; current != empty; current = s.next[current] {
		out = append(out, indexLevel{index: current, qty: s.volumes[current]})
	}
	return out
}

func (s *side) headLevel() (indexLevel, bool) {
	if s.head == empty {
		return indexLevel{}, false
	}
	return indexLevel{index: s.head, qty: s.volumes[s.head]}, true
}

func (s *side) tailLevel() (indexLevel, bool) {
	if s.head == empty {
		return indexLevel{}, false
	}
	current := s.head
	for s.next[current] != empty {
		current = s.next[current]
	}
	return indexLevel{index: current, qty: s.volumes[current]}, true
}

func (s *side) clear() {
	current := s.head
	for current != empty {
		next := s.next[current]
		s.remove(current)
		s.volumes[current] = 0
		current = next
	}
}

type indexLevel struct {
	index int
	qty   uint64
}

// Level is a materialized (price, qty) pair.
type Level struct {
	Price float64
	Qty   uint64
}

// Book is the dense-grid order book for one instrument.
type Book struct {
	SeqNoVal     uint64
	TimestampVal uint64

	config Config
	bids   *side
	asks   *side
}

// New allocates a Book sized to config's price grid. Panics if the grid
// would exceed MaxLevels, mirroring the original implementation's
// construction-time assertion.
func New(config Config) *Book {
	levels := config.Levels()
	if levels > MaxLevels {
		panic(fmt.Sprintf("number of levels %d exceeds the max levels limit of %d", levels, MaxLevels))
	}
	return &Book{
		config: config,
		bids:   newSide(levels, true),
		asks:   newSide(levels, false),
	}
}

// ID returns the instrument id this book was configured for.
func (b *Book) ID() uint64 { return b.config.ID }

// SeqNo and Timestamp satisfy wire.Book.
func (b *Book) SeqNo() uint64           { return b.SeqNoVal }
func (b *Book) Timestamp() uint64       { return b.TimestampVal }
func (b *Book) SetSeqNo(v uint64)       { b.SeqNoVal = v }
func (b *Book) SetTimestamp(v uint64)   { b.TimestampVal = v }

const emptyIndex = empty

func (b *Book) priceToIndex(price float64) int {
	if price < b.config.MinPrice || price > b.config.MaxPrice {
		return emptyIndex
	}
	return int(math.Round((price - b.config.MinPrice) / b.config.TickSize))
}

func (b *Book) indexToPrice(index int) float64 {
	return b.config.MinPrice + b.config.TickSize*float64(index)
}

// AddBid maps price to a grid index and updates the bid side, or
// returns *wire.InvalidData if price is outside the configured grid.
func (b *Book) AddBid(price float64, qty uint64) error {
	idx := b.priceToIndex(price)
	if idx == emptyIndex {
		return &wire.InvalidData{Message: "price is out of bounds"}
	}
	b.bids.update(idx, qty)
	return nil
}

// AddAsk is AddBid's ask-side counterpart.
func (b *Book) AddAsk(price float64, qty uint64) error {
	idx := b.priceToIndex(price)
	if idx == emptyIndex {
		return &wire.InvalidData{Message: "price is out of bounds"}
	}
	b.asks.update(idx, qty)
	return nil
}

// GetBids returns resting bid levels in descending price order.
func (b *Book) GetBids() []Level { return b.projectLevels(b.bids) }

// GetAsks returns resting ask levels in ascending price order.
func (b *Book) GetAsks() []Level { return b.projectLevels(b.asks) }

func (b *Book) projectLevels(s *side) []Level {
	idxLevels := s.levels()
	out := make([]Level, len(idxLevels))
	for i, l := range idxLevels {
		out[i] = Level{Price: b.indexToPrice(l.index), Qty: l.qty}
	}
	return out
}

// BestBid/BestAsk project each side's head; WorstBid/WorstAsk its tail.
func (b *Book) BestBid() (Level, bool)  { return b.project(b.bids.headLevel()) }
func (b *Book) BestAsk() (Level, bool)  { return b.project(b.asks.headLevel()) }
func (b *Book) WorstBid() (Level, bool) { return b.project(b.bids.tailLevel()) }
func (b *Book) WorstAsk() (Level, bool) { return b.project(b.asks.tailLevel()) }

func (b *Book) project(l indexLevel, ok bool) (Level, bool) {
	if !ok {
		return Level{}, false
	}
	return Level{Price: b.indexToPrice(l.index), Qty: l.qty}, true
}

// Clear drops all resting levels on both sides and resets seq_no and
// timestamp to zero. This is deliberately asymmetric with TreeBook.Clear,
// which leaves seq_no/timestamp untouched — the snapshot decoder always
// overwrites both immediately after clearing, so the two variants are
// indistinguishable from that call site, but a caller invoking Clear
// directly will observe the difference. See spec.md §9.
func (b *Book) Clear() {
	b.bids.clear()
	b.asks.clear()
	b.SeqNoVal = 0
	b.TimestampVal = 0
}

// String renders the book the way the original Rust Debug impl did:
// id, seq_no, timestamp and both sides' materialized levels.
func (b *Book) String() string {
	return fmt.Sprintf("OrderBook(id: %d, seq_no: %d, timestamp: %d, bids: %v, asks: %v)",
		b.config.ID, b.SeqNoVal, b.TimestampVal, b.GetBids(), b.GetAsks())
}

var _ wire.Book = (*Book)(nil)
