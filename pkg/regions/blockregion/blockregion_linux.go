//Package blockregion provides an ioregion.Region over a byte extent of a
// raw block device. The device's logical sector size is the region block
// size, and writes must cover whole sectors.
package blockregion

import (
	"fmt"
	"io"
	"os"

	"github.com/udsgo/ioregion/pkg/ioregion"

	"golang.org/x/sys/unix"
)

//BlockRegion is an ioregion.Region exposing the extent
// [start, start+limit) of a block device. The device cannot report how much
// of the extent holds real data, so the data extent is the limit.
type BlockRegion struct {
	ioregion.RefCount
	dev        *os.File
	start      int64
	limit      int64
	sectorSize int64
}

var _ ioregion.Region = &BlockRegion{} //compile time interface check

//New opens the block device at devPath and exposes the size bytes starting
// at start, returning a region holding the caller's reference. A size of
// zero or less means the rest of the device. Both start and size must be
// sector aligned.
func New(devPath string, start, size int64) (*BlockRegion, error) {
	dev, err := os.OpenFile(devPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("Could not open block device %q: %w", devPath, err)
	}

	fd := int(dev.Fd())
	sectorSize, err := unix.IoctlGetInt(fd, unix.BLKSSZGET)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("Could not get sector size of block device %q: %w", devPath, err)
	}
	devSize, err := unix.IoctlGetInt(fd, unix.BLKGETSIZE64)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("Could not get size of block device %q: %w", devPath, err)
	}

	if size < 1 {
		size = int64(devSize) - start
	}
	switch {
	case start < 0, start%int64(sectorSize) != 0:
		dev.Close()
		return nil, fmt.Errorf("Extent start %d on %q: %w", start, devPath, ioregion.ErrAlignment)
	case size < 1, size%int64(sectorSize) != 0:
		dev.Close()
		return nil, fmt.Errorf("Extent size %d on %q: %w", size, devPath, ioregion.ErrBufferSize)
	case start+size > int64(devSize):
		dev.Close()
		return nil, fmt.Errorf("Extent [%d, %d) exceeds the %d byte device %q: %w", start, start+size, devSize, devPath, ioregion.ErrOutOfRange)
	}

	return &BlockRegion{
		RefCount:   ioregion.NewRefCount(),
		dev:        dev,
		start:      start,
		limit:      size,
		sectorSize: int64(sectorSize),
	}, nil
}

//BlockSize fufills part of ioregion.Region; it is the device's logical
// sector size
func (breg *BlockRegion) BlockSize() int64 {
	return breg.sectorSize
}

//DataSize fufills part of ioregion.Region; a raw device cannot track its
// data extent so the limit is reported
func (breg *BlockRegion) DataSize() (int64, error) {
	return breg.limit, nil
}

//Limit fufills part of ioregion.Region
func (breg *BlockRegion) Limit() (int64, error) {
	return breg.limit, nil
}

//ReadAt fufills part of ioregion.Region
func (breg *BlockRegion) ReadAt(buf []byte, off int64, minLength int) (int, error) {
	if err := ioregion.CheckRead(off, len(buf), minLength, breg.sectorSize); err != nil {
		return 0, err
	}

	want := len(buf)
	if avail := breg.limit - off; int64(want) > avail {
		if avail <= 0 {
			return 0, io.EOF
		}
		want = int(avail)
	}

	count, err := breg.dev.ReadAt(buf[:want], breg.start+off)
	if err != nil && err != io.EOF {
		return count, fmt.Errorf("Could not read %d bytes at offset %d of %q: %w", want, off, breg.dev.Name(), err)
	}
	switch {
	case count >= minLength:
		return count, nil
	case count == 0:
		return 0, io.EOF
	default:
		return count, ioregion.ErrShortRead
	}
}

//WriteAt fufills part of ioregion.Region; the device needs whole sectors so
// short writes that end inside a sector are rejected rather than rounded up
func (breg *BlockRegion) WriteAt(buf []byte, off int64, length int) error {
	if err := ioregion.CheckWrite(off, len(buf), length, breg.sectorSize, breg.limit); err != nil {
		return err
	}
	if int64(length)%breg.sectorSize != 0 {
		return ioregion.ErrBufferSize
	}
	if _, err := breg.dev.WriteAt(buf[:length], breg.start+off); err != nil {
		return fmt.Errorf("Could not write %d bytes at offset %d of %q: %w", length, off, breg.dev.Name(), err)
	}
	return nil
}

//Sync fufills part of ioregion.Region
func (breg *BlockRegion) Sync() error {
	if err := unix.Fdatasync(int(breg.dev.Fd())); err != nil {
		return fmt.Errorf("Could not sync block device %q: %w", breg.dev.Name(), err)
	}
	return nil
}

//Free fufills part of ioregion.Region; it is invoked by the final
// ioregion.Put and must not be called directly
func (breg *BlockRegion) Free() error {
	if err := breg.dev.Close(); err != nil {
		return fmt.Errorf("Could not close block device %q: %w", breg.dev.Name(), err)
	}
	return nil
}
