package testutil

import (
	"testing"

	"github.com/udsgo/ioregion/pkg/ioregion"
)

//Pattern returns a buffer of size bytes all holding val
func Pattern(size int64, val byte) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = val
	}
	return buf
}

//IsPattern reports whether every byte of buf holds val
func IsPattern(buf []byte, val byte) bool {
	for _, b := range buf {
		if b != val {
			return false
		}
	}
	return true
}

//MustLimit fetches the region limit or fails the test
func MustLimit(t *testing.T, region ioregion.Region) int64 {
	t.Helper()
	limit, err := region.Limit()
	if err != nil {
		t.Fatalf("Could not get region limit: %s", err)
	}
	return limit
}

//MustDataSize fetches the region data extent or fails the test
func MustDataSize(t *testing.T, region ioregion.Region) int64 {
	t.Helper()
	size, err := region.DataSize()
	if err != nil {
		t.Fatalf("Could not get region data size: %s", err)
	}
	return size
}
