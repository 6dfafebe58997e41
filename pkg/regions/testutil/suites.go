//Package testutil holds the contract suite every ioregion.Region
// implementation is expected to pass, plus small helpers for backend tests.
package testutil

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/udsgo/ioregion/pkg/ioregion"
)

//Options describe the backend specific expectations of TestRegion
type Options struct {
	//SyncSupported is true when Sync should succeed rather than report
	// ioregion.ErrUnsupported
	SyncSupported bool
	//TracksData is true when DataSize reflects actual writes rather than
	// falling back to the region limit
	TracksData bool
}

//TestRegion runs the contract suite against a freshly constructed, empty
// region with a finite limit of at least four blocks. The caller keeps its
// reference and remains responsible for the final ioregion.Put; the suite
// balances every reference it takes itself. Subtests mutate the region and
// depend on running in order, so the suite must own it exclusively.
func TestRegion(t *testing.T, region ioregion.Region, opts Options) {
	blockSize := region.BlockSize()
	if blockSize < 2 {
		t.Fatalf("Contract suite needs a block size of at least 2, got %d", blockSize)
	}
	limit := MustLimit(t, region)
	if limit == ioregion.Unbounded || limit < blockSize*4 || limit%blockSize != 0 {
		t.Fatalf("Contract suite needs a finite block-multiple limit of at least four blocks, got %d", limit)
	}

	t.Run("limits", func(t *testing.T) {
		if size := MustDataSize(t, region); size > limit {
			t.Fatalf("Data size %d exceeds limit %d", size, limit)
		}
	})

	if opts.TracksData {
		t.Run("empty", func(t *testing.T) {
			if size := MustDataSize(t, region); size != 0 {
				t.Fatalf("Fresh region reports %d bytes of data", size)
			}
			if _, err := ioregion.ReadFull(region, make([]byte, blockSize), 0); !errors.Is(err, io.EOF) {
				t.Fatalf("Read of a fresh region yielded %v rather than EOF", err)
			}
		})
	}

	t.Run("round-trip", func(t *testing.T) {
		const val = 0xAB
		data := Pattern(blockSize, val)
		if err := ioregion.Write(region, data, 0); err != nil {
			t.Fatalf("Could not write first block: %s", err)
		}

		buf := make([]byte, blockSize)
		count, err := ioregion.ReadFull(region, buf, 0)
		switch {
		case err != nil:
			t.Fatalf("Could not read first block back: %s", err)
		case count != int(blockSize):
			t.Fatalf("Read %d bytes rather than the %d written", count, blockSize)
		case !bytes.Equal(buf, data):
			t.Fatalf("Read data differs from data written")
		}

		if size := MustDataSize(t, region); size < blockSize {
			t.Fatalf("Data size %d does not cover the block written", size)
		}
	})

	if opts.TracksData {
		t.Run("short-read", func(t *testing.T) {
			//Only the first block exists at this point
			buf := make([]byte, blockSize*2)
			if _, err := ioregion.ReadFull(region, buf, 0); !errors.Is(err, ioregion.ErrShortRead) {
				t.Fatalf("Requiring two blocks where one exists yielded %v rather than ErrShortRead", err)
			}

			count, err := region.ReadAt(buf, 0, int(blockSize))
			switch {
			case err != nil:
				t.Fatalf("Read with a satisfiable minimum failed: %s", err)
			case count < int(blockSize):
				t.Fatalf("Read returned %d bytes, less than the %d byte minimum", count, blockSize)
			case !IsPattern(buf[:blockSize], 0xAB):
				t.Fatalf("Read data differs from data written")
			}
		})

		t.Run("end-of-data", func(t *testing.T) {
			if _, err := ioregion.ReadFull(region, make([]byte, blockSize), blockSize); !errors.Is(err, io.EOF) {
				t.Fatalf("Read past all written data yielded %v rather than EOF", err)
			}
		})
	}

	t.Run("alignment", func(t *testing.T) {
		buf := make([]byte, blockSize)
		if _, err := ioregion.ReadFull(region, buf, blockSize/2); !errors.Is(err, ioregion.ErrAlignment) {
			t.Fatalf("Misaligned read yielded %v rather than ErrAlignment", err)
		}
		if err := ioregion.Write(region, Pattern(blockSize, 0xFF), blockSize/2); !errors.Is(err, ioregion.ErrAlignment) {
			t.Fatalf("Misaligned write yielded %v rather than ErrAlignment", err)
		}

		//No transfer may have occurred
		if _, err := ioregion.ReadFull(region, buf, 0); err != nil {
			t.Fatalf("Could not re-read first block: %s", err)
		}
		if !IsPattern(buf, 0xAB) {
			t.Fatalf("Rejected write still modified the region")
		}
	})

	t.Run("buffer-size", func(t *testing.T) {
		buf := make([]byte, blockSize-1)
		if _, err := region.ReadAt(buf, 0, len(buf)); !errors.Is(err, ioregion.ErrBufferSize) {
			t.Fatalf("Undersized read buffer yielded %v rather than ErrBufferSize", err)
		}
		if err := ioregion.Write(region, buf, 0); !errors.Is(err, ioregion.ErrBufferSize) {
			t.Fatalf("Undersized write buffer yielded %v rather than ErrBufferSize", err)
		}
	})

	t.Run("out-of-range", func(t *testing.T) {
		if err := ioregion.Write(region, Pattern(blockSize, 0xFF), limit); !errors.Is(err, ioregion.ErrOutOfRange) {
			t.Fatalf("Write at the limit yielded %v rather than ErrOutOfRange", err)
		}
		if err := ioregion.Write(region, Pattern(blockSize*2, 0xFF), limit-blockSize); !errors.Is(err, ioregion.ErrOutOfRange) {
			t.Fatalf("Write spanning the limit yielded %v rather than ErrOutOfRange", err)
		}

		if opts.TracksData {
			//The spanning write may not have landed partially
			if _, err := ioregion.ReadFull(region, make([]byte, blockSize), limit-blockSize); !errors.Is(err, io.EOF) {
				t.Fatalf("Rejected write still left data behind, read yielded %v", err)
			}
		}
	})

	t.Run("end-of-region", func(t *testing.T) {
		if _, err := ioregion.ReadFull(region, make([]byte, blockSize), limit); !errors.Is(err, io.EOF) {
			t.Fatalf("Read at the limit yielded %v rather than EOF", err)
		}
	})

	t.Run("sync", func(t *testing.T) {
		err := region.Sync()
		if opts.SyncSupported {
			if err != nil {
				t.Fatalf("Sync failed: %s", err)
			}
		} else if !errors.Is(err, ioregion.ErrUnsupported) {
			t.Fatalf("Sync on a backend without durability yielded %v rather than ErrUnsupported", err)
		}
	})

	t.Run("references", func(t *testing.T) {
		ioregion.Get(region)
		if err := ioregion.Put(region); err != nil {
			t.Fatalf("Balanced put failed: %s", err)
		}

		//The caller's reference must still be live
		buf := make([]byte, blockSize)
		if _, err := ioregion.ReadFull(region, buf, 0); err != nil {
			t.Fatalf("Region was not usable after a balanced get/put pair: %s", err)
		}
		if !IsPattern(buf, 0xAB) {
			t.Fatalf("Region data changed across a get/put pair")
		}
	})
}
