//Package fileregion provides an ioregion.Region backed by a regular file.
package fileregion

import (
	"fmt"
	"io"
	"os"

	"github.com/udsgo/ioregion/pkg/ioregion"
)

//FileRegion is a simple file backed ioregion.Region. The data extent is
// derived from the backing file size, so it survives reopening the file.
type FileRegion struct {
	ioregion.RefCount
	file      *os.File
	blockSize int64
	limit     int64
}

var _ ioregion.Region = &FileRegion{} //compile time interface check

//New opens (or creates empty) the backing file and returns a region holding
// the caller's reference. A limit of zero or less means the region is only
// bounded by the backing filesystem.
func New(filename string, blockSize, limit int64) (*FileRegion, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("Block size %d is not positive: %w", blockSize, ioregion.ErrBufferSize)
	}
	if limit < 1 {
		limit = ioregion.Unbounded
	}

	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("Could not open backing file %q: %w", filename, err)
	}
	return &FileRegion{
		RefCount:  ioregion.NewRefCount(),
		file:      file,
		blockSize: blockSize,
		limit:     limit,
	}, nil
}

//BlockSize fufills part of ioregion.Region
func (freg *FileRegion) BlockSize() int64 {
	return freg.blockSize
}

//DataSize fufills part of ioregion.Region; the extent of existing data is
// the backing file size clamped to the region limit
func (freg *FileRegion) DataSize() (int64, error) {
	info, err := freg.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("Could not stat backing file %q: %w", freg.file.Name(), err)
	}
	if size := info.Size(); size < freg.limit {
		return size, nil
	}
	return freg.limit, nil
}

//Limit fufills part of ioregion.Region
func (freg *FileRegion) Limit() (int64, error) {
	return freg.limit, nil
}

//ReadAt fufills part of ioregion.Region
func (freg *FileRegion) ReadAt(buf []byte, off int64, minLength int) (int, error) {
	if err := ioregion.CheckRead(off, len(buf), minLength, freg.blockSize); err != nil {
		return 0, err
	}

	want := len(buf)
	if avail := freg.limit - off; int64(want) > avail {
		if avail <= 0 {
			return 0, io.EOF
		}
		want = int(avail)
	}

	count, err := freg.file.ReadAt(buf[:want], off)
	if err != nil && err != io.EOF {
		return count, fmt.Errorf("Could not read %d bytes at offset %d of %q: %w", want, off, freg.file.Name(), err)
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

//WriteAt fufills part of ioregion.Region; short writes are accepted
func (freg *FileRegion) WriteAt(buf []byte, off int64, length int) error {
	if err := ioregion.CheckWrite(off, len(buf), length, freg.blockSize, freg.limit); err != nil {
		return err
	}
	if _, err := freg.file.WriteAt(buf[:length], off); err != nil {
		return fmt.Errorf("Could not write %d bytes at offset %d of %q: %w", length, off, freg.file.Name(), err)
	}
	return nil
}

//Sync fufills part of ioregion.Region
func (freg *FileRegion) Sync() error {
	if err := freg.file.Sync(); err != nil {
		return fmt.Errorf("Could not sync backing file %q: %w", freg.file.Name(), err)
	}
	return nil
}

//Free fufills part of ioregion.Region; it is invoked by the final
// ioregion.Put and must not be called directly
func (freg *FileRegion) Free() error {
	if err := freg.file.Close(); err != nil {
		return fmt.Errorf("Could not close backing file %q: %w", freg.file.Name(), err)
	}
	return nil
}
