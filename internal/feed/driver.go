// Package feed drives the two order-book variants from a snapshot file
// followed by an incremental update stream, producing a populated
// per-instrument collection.
//
// Both drivers are single-threaded and synchronous: one driver instance
// owns the call stack until the incremental stream hits EOF or a fatal
// error, matching spec.md §5 — there is no sharding, no async I/O, and
// no cancellation support.
package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ekrestinin/orderbook-collection/internal/arraybook"
	"github.com/ekrestinin/orderbook-collection/internal/config"
	"github.com/ekrestinin/orderbook-collection/internal/treebook"
	"github.com/ekrestinin/orderbook-collection/internal/wire"
)

// RunArray populates one ArrayBook per configured instrument from the
// snapshot file, then applies the incremental stream, returning the
// collection keyed by instrument id. This is spec.md §6's run_dense.
func RunArray(snapshotPath, incrementalPath string, cfg config.Config, log *zap.SugaredLogger) (map[uint64]*arraybook.Book, error) {
	books := make(map[uint64]*arraybook.Book, len(cfg.Instruments))
	for id, ic := range cfg.Instruments {
		books[id] = arraybook.New(arraybook.Config{
			ID:       ic.ID,
			MinPrice: ic.MinPrice,
			MaxPrice: ic.MaxPrice,
			TickSize: ic.TickSize,
		})
	}

	if err := readArraySnapshotFile(snapshotPath, books, log); err != nil {
		return nil, err
	}
	log.Debugw("read order books from snapshot file", "count", len(books))

	asBook := func(id uint64) (wire.Book, bool) {
		b, ok := books[id]
		if !ok {
			return nil, false
		}
		return b, true
	}
	if err := readIncrementalFile(incrementalPath, cfg.IncrementalBufferSize, asBook, log); err != nil {
		return nil, err
	}
	log.Debugw("processed incremental updates", "count", len(books))

	return books, nil
}

// RunTree populates the collection entirely from the snapshot stream
// (one fresh TreeBook per record), then applies the incremental stream.
// This is spec.md §6's run_sparse.
func RunTree(snapshotPath, incrementalPath string, cfg config.Config, log *zap.SugaredLogger) (map[uint64]*treebook.Book, error) {
	books, err := readTreeSnapshotFile(snapshotPath, log)
	if err != nil {
		return nil, err
	}
	log.Debugw("read order books from snapshot file", "count", len(books))

	asBook := func(id uint64) (wire.Book, bool) {
		b, ok := books[id]
		if !ok {
			return nil, false
		}
		return b, true
	}
	if err := readIncrementalFile(incrementalPath, cfg.IncrementalBufferSize, asBook, log); err != nil {
		return nil, err
	}
	log.Debugw("processed incremental updates", "count", len(books))

	return books, nil
}

func readArraySnapshotFile(path string, books map[uint64]*arraybook.Book, log *zap.SugaredLogger) error {
	log.Infow("reading snapshot file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	buf := make([]byte, wire.SnapshotRecordSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		lookup := func(id uint64) (wire.Book, bool) {
			b, ok := books[id]
			if !ok {
				return nil, false
			}
			return b, true
		}
		if err := wire.DecodeSnapshotInPlace(buf, lookup); err != nil {
			return err
		}
	}
}

func readTreeSnapshotFile(path string, log *zap.SugaredLogger) (map[uint64]*treebook.Book, error) {
	log.Infow("reading snapshot file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	books := make(map[uint64]*treebook.Book)
	r := bufio.NewReader(f)
	buf := make([]byte, wire.SnapshotRecordSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return books, nil
			}
			return nil, err
		}

		var newBook *treebook.Book
		decoded, err := wire.DecodeSnapshotAlloc(buf, func(id uint64) wire.Book {
			newBook = treebook.New(id)
			return newBook
		})
		if err != nil {
			return nil, err
		}
		books[decoded.ID()] = newBook
	}
}

// readIncrementalFile reads the incremental stream in buffer_size
// chunks, applying each complete record via wire.DecodeIncremental.
//
// buffer_size is the caller-visible read granularity only, not an upper
// bound on record size: unconsumed bytes left over after a
// BufferTooSmall are carried forward and grown with each subsequent
// read, rather than re-read from the same file offset. A fixed-size
// read-and-rewind would never make progress once a single record's
// length exceeds buffer_size, since re-reading the same file position
// with the same chunk size reproduces the exact same short read
// forever. Accumulating instead guarantees forward progress for any
// buffer_size >= 1, at the cost of extra copying when buffer_size is
// much smaller than a record — the throughput penalty spec.md expects.
func readIncrementalFile(path string, bufferSize int, lookup func(id uint64) (wire.Book, bool), log *zap.SugaredLogger) error {
	log.Infow("reading incremental file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	chunk := make([]byte, bufferSize)
	var pending []byte
	var totalOffset int64
	var gap *wire.GapDetected
	var notFound *wire.BookNotFound
	var invalid *wire.InvalidData

readLoop:
	for {
		bytesRead, readErr := f.Read(chunk)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		if bytesRead > 0 {
			pending = append(pending, chunk[:bytesRead]...)
		}
		atEOF := errors.Is(readErr, io.EOF) || bytesRead == 0

		for len(pending) > 0 {
			n, err := wire.DecodeIncremental(pending, lookup)
			if err == nil {
				pending = pending[n:]
				totalOffset += int64(n)
				continue
			}

			switch {
			case errors.As(err, &gap):
				log.Warnw("gap detected in incremental updates", "id", gap.ID, "offset", totalOffset)
				pending = pending[gap.ConsumedBytes:]
				totalOffset += int64(gap.ConsumedBytes)
				continue
			case errors.Is(err, wire.ErrBufferTooSmall):
				if atEOF {
					return fmt.Errorf("incremental file truncated: %d trailing bytes do not form a complete record", len(pending))
				}
				// Not enough bytes yet for a full record: read another
				// chunk and retry against the grown pending buffer.
				continue readLoop
			case errors.As(err, &notFound):
				return err
			case errors.As(err, &invalid):
				return err
			default:
				return err
			}
		}

		if atEOF {
			return nil
		}
	}
}
