package fileregion

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/udsgo/ioregion/pkg/ioregion"
	"github.com/udsgo/ioregion/pkg/regions/testutil"
)

const (
	testBlockSize = 4096
	testLimit     = 1 << 20
)

func TestFileRegionContract(t *testing.T) {
	region, err := New(filepath.Join(t.TempDir(), "index.vol"), testBlockSize, testLimit)
	if err != nil {
		t.Fatalf("Could not create file region: %s", err)
	}
	defer ioregion.Put(region)

	testutil.TestRegion(t, region, testutil.Options{SyncSupported: true, TracksData: true})
}

//TestFileRegionScenario walks a region through the canonical index volume
// access sequence: write a block, read it back, probe unwritten space, and
// attempt a misaligned write.
func TestFileRegionScenario(t *testing.T) {
	region, err := New(filepath.Join(t.TempDir(), "index.vol"), testBlockSize, testLimit)
	if err != nil {
		t.Fatalf("Could not create file region: %s", err)
	}
	defer ioregion.Put(region)

	data := testutil.Pattern(testBlockSize, 0xAB)
	if err := ioregion.Write(region, data, 0); err != nil {
		t.Fatalf("Could not write pattern block: %s", err)
	}

	buf := make([]byte, testBlockSize)
	count, err := ioregion.ReadFull(region, buf, 0)
	switch {
	case err != nil:
		t.Fatalf("Could not read pattern block: %s", err)
	case count != testBlockSize:
		t.Fatalf("Read %d bytes rather than %d", count, testBlockSize)
	case !bytes.Equal(buf, data):
		t.Fatalf("Read data differs from pattern written")
	}

	if _, err = ioregion.ReadFull(region, buf, testBlockSize); !errors.Is(err, io.EOF) {
		t.Fatalf("Read of unwritten space yielded %v rather than EOF", err)
	}
	if err = ioregion.Write(region, data, 100); !errors.Is(err, ioregion.ErrAlignment) {
		t.Fatalf("Misaligned write yielded %v rather than ErrAlignment", err)
	}
}

func TestFileRegionPersists(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "index.vol")

	region, err := New(filename, testBlockSize, testLimit)
	if err != nil {
		t.Fatalf("Could not create file region: %s", err)
	}
	data := testutil.Pattern(testBlockSize*2, 0x5C)
	if err = ioregion.Write(region, data, testBlockSize); err != nil {
		t.Fatalf("Could not write pattern blocks: %s", err)
	}
	if err = region.Sync(); err != nil {
		t.Fatalf("Could not sync region: %s", err)
	}
	if err = ioregion.Put(region); err != nil {
		t.Fatalf("Could not release region: %s", err)
	}

	if region, err = New(filename, testBlockSize, testLimit); err != nil {
		t.Fatalf("Could not reopen file region: %s", err)
	}
	defer ioregion.Put(region)

	if size := testutil.MustDataSize(t, region); size != testBlockSize*3 {
		t.Fatalf("Reopened region reports %d data bytes rather than %d", size, testBlockSize*3)
	}
	buf := make([]byte, testBlockSize*2)
	if _, err = ioregion.ReadFull(region, buf, testBlockSize); err != nil {
		t.Fatalf("Could not read pattern blocks back: %s", err)
	}
	if !testutil.IsPattern(buf, 0x5C) {
		t.Fatalf("Reopened region data differs from pattern written")
	}
}

func TestFileRegionUnbounded(t *testing.T) {
	region, err := New(filepath.Join(t.TempDir(), "index.vol"), testBlockSize, 0)
	if err != nil {
		t.Fatalf("Could not create file region: %s", err)
	}
	defer ioregion.Put(region)

	limit := testutil.MustLimit(t, region)
	if limit != ioregion.Unbounded {
		t.Fatalf("Region without a limit reports %d rather than Unbounded", limit)
	}

	//Writes far past any preset size must still land
	far := int64(testLimit) * 4
	if err = ioregion.Write(region, testutil.Pattern(testBlockSize, 0x11), far); err != nil {
		t.Fatalf("Could not write past the bounded test limit: %s", err)
	}
	if size := testutil.MustDataSize(t, region); size != far+testBlockSize {
		t.Fatalf("Data size %d does not reflect the far write end %d", size, far+testBlockSize)
	}
}
