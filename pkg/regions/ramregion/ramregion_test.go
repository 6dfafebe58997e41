package ramregion

import (
	"errors"
	"testing"

	"github.com/udsgo/ioregion/pkg/ioregion"
	"github.com/udsgo/ioregion/pkg/regions/testutil"
)

const (
	testBlockSize = 4096
	testLimit     = 64 * 4096
)

func TestRAMRegionContract(t *testing.T) {
	region := New(testBlockSize, testLimit)
	defer ioregion.Put(region)

	testutil.TestRegion(t, region, testutil.Options{SyncSupported: false, TracksData: true})
}

func TestRAMRegionSyncUnsupported(t *testing.T) {
	region := New(testBlockSize, testLimit)
	defer ioregion.Put(region)

	if err := ioregion.Write(region, testutil.Pattern(testBlockSize, 0x42), 0); err != nil {
		t.Fatalf("Could not write pattern block: %s", err)
	}
	if err := region.Sync(); !errors.Is(err, ioregion.ErrUnsupported) {
		t.Fatalf("Sync yielded %v rather than ErrUnsupported", err)
	}

	//The refused sync may not disturb the data
	buf := make([]byte, testBlockSize)
	if _, err := ioregion.ReadFull(region, buf, 0); err != nil {
		t.Fatalf("Could not read pattern block back: %s", err)
	}
	if !testutil.IsPattern(buf, 0x42) {
		t.Fatalf("Region data changed across the refused sync")
	}
}

func TestRAMRegionExtentConcurrency(t *testing.T) {
	region := New(testBlockSize, testLimit)
	defer ioregion.Put(region)

	done := make(chan error, 16)
	for i := int64(0); i < 16; i++ {
		go func(block int64) {
			done <- ioregion.Write(region, testutil.Pattern(testBlockSize, byte(block)), block*testBlockSize)
		}(i)
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Concurrent write failed: %s", err)
		}
	}

	if size := testutil.MustDataSize(t, region); size != 16*testBlockSize {
		t.Fatalf("Data size %d does not cover all 16 concurrently written blocks", size)
	}
}
