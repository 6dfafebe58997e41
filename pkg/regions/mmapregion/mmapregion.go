//Package mmapregion provides an ioregion.Region backed by a memory-mapped
// file. The mapping covers the whole region, so the data extent cannot be
// tracked and is reported as the limit.
package mmapregion

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/udsgo/ioregion/pkg/ioregion"

	"launchpad.net/gommap"
)

//MmapRegion is an ioregion.Region implemented over a mem-mapped file
type MmapRegion struct {
	ioregion.RefCount
	file      *os.File
	rawBytes  gommap.MMap
	blockSize int64
	limit     int64
}

var _ ioregion.Region = &MmapRegion{} //compile time interface check

//New opens or creates the backing file, zero fills it to size if it is
// smaller, maps it and returns a region holding the caller's reference
func New(filename string, blockSize, size int64) (*MmapRegion, error) {
	if blockSize < 1 || size < 1 || size%blockSize != 0 {
		return nil, fmt.Errorf("Region size %d is not a positive multiple of block size %d: %w", size, blockSize, ioregion.ErrBufferSize)
	}

	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("Could not open backing file %q: %w", filename, err)
	}
	if info, err := file.Stat(); err != nil {
		return nil, fmt.Errorf("Could not stat backing file %q: %w", filename, err)
	} else if info.Size() < size { //Grow to the mappable size
		strm := bufio.NewWriter(file)
		for i := info.Size(); i < size; i++ {
			if err = strm.WriteByte(0); err != nil {
				return nil, fmt.Errorf("Could not zero fill backing file %q, write failed: %w", filename, err)
			}
		}
		if err = strm.Flush(); err != nil {
			return nil, fmt.Errorf("Could not zero fill backing file %q, flush failed: %w", filename, err)
		}
		if err = file.Sync(); err != nil {
			return nil, fmt.Errorf("Could not zero fill backing file %q, sync failed: %w", filename, err)
		}
	}

	mmap, err := gommap.Map(file.Fd(), gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("Could not mmap backing file %q (fd %d): %w", filename, file.Fd(), err)
	}
	return &MmapRegion{
		RefCount:  ioregion.NewRefCount(),
		file:      file,
		rawBytes:  mmap,
		blockSize: blockSize,
		limit:     size,
	}, nil
}

//BlockSize fufills part of ioregion.Region
func (mreg *MmapRegion) BlockSize() int64 {
	return mreg.blockSize
}

//DataSize fufills part of ioregion.Region; the mapping cannot distinguish
// written from unwritten bytes so the limit is reported
func (mreg *MmapRegion) DataSize() (int64, error) {
	return mreg.limit, nil
}

//Limit fufills part of ioregion.Region
func (mreg *MmapRegion) Limit() (int64, error) {
	return mreg.limit, nil
}

//ReadAt fufills part of ioregion.Region
func (mreg *MmapRegion) ReadAt(buf []byte, off int64, minLength int) (int, error) {
	if err := ioregion.CheckRead(off, len(buf), minLength, mreg.blockSize); err != nil {
		return 0, err
	}

	avail := mreg.limit - off
	if avail <= 0 {
		return 0, io.EOF
	}
	count := len(buf)
	if int64(count) > avail {
		count = int(avail)
	}
	copy(buf[:count], mreg.rawBytes[off:off+int64(count)])
	if count < minLength {
		return count, ioregion.ErrShortRead
	}
	return count, nil
}

//WriteAt fufills part of ioregion.Region; short writes are accepted
func (mreg *MmapRegion) WriteAt(buf []byte, off int64, length int) error {
	if err := ioregion.CheckWrite(off, len(buf), length, mreg.blockSize, mreg.limit); err != nil {
		return err
	}
	copy(mreg.rawBytes[off:off+int64(length)], buf[:length])
	return nil
}

//Sync fufills part of ioregion.Region
func (mreg *MmapRegion) Sync() error {
	if err := mreg.rawBytes.Sync(gommap.MS_SYNC); err != nil {
		return fmt.Errorf("Could not sync mapping of %q: %w", mreg.file.Name(), err)
	}
	return nil
}

//Free fufills part of ioregion.Region; it is invoked by the final
// ioregion.Put and must not be called directly
func (mreg *MmapRegion) Free() error {
	syncErr := mreg.rawBytes.Sync(gommap.MS_SYNC)
	unmapErr := mreg.rawBytes.UnsafeUnmap()
	err := mreg.file.Close()
	if err == nil {
		if err = syncErr; err == nil {
			err = unmapErr
		}
	}
	if err != nil {
		return fmt.Errorf("Could not release mapping of backing file: %w", err)
	}
	return nil
}
