package ioregion

import (
	"github.com/udsgo/ioregion/pkg/util/consterr"
)

//Errors reported identically by every Region implementation. Reads that
// find no data at all report io.EOF; errors from the underlying medium are
// passed through wrapped with context.
const (
	//ErrAlignment indicates an offset that is not a multiple of the
	// region's block size
	ErrAlignment = consterr.ConstErr("Offset is not aligned to the region block size")

	//ErrBufferSize indicates a buffer or data size that is not a multiple
	// of the region's block size
	ErrBufferSize = consterr.ConstErr("Buffer size is not a multiple of the region block size")

	//ErrShortRead indicates fewer bytes were available than the required
	// minimum, but some data existed
	ErrShortRead = consterr.ConstErr("Fewer bytes were available than the required minimum")

	//ErrOutOfRange indicates a write whose offset plus length exceeds the
	// region limit
	ErrOutOfRange = consterr.ConstErr("Write extends beyond the region limit")

	//ErrUnsupported indicates the operation is not implemented by this
	// region's backing medium
	ErrUnsupported = consterr.ConstErr("Operation is not supported by this region")
)

//CheckAccess validates an offset and buffer size against blockSize so every
// implementation reports the same error vocabulary
func CheckAccess(off int64, bufSize int, blockSize int64) error {
	switch {
	case off < 0, off%blockSize != 0:
		return ErrAlignment
	case bufSize < 0, int64(bufSize)%blockSize != 0:
		return ErrBufferSize
	}
	return nil
}

//CheckRead validates the arguments of a Region.ReadAt call
func CheckRead(off int64, bufSize, minLength int, blockSize int64) error {
	if err := CheckAccess(off, bufSize, blockSize); err != nil {
		return err
	}
	if minLength < 0 || minLength > bufSize {
		return ErrBufferSize
	}
	return nil
}

//CheckWrite validates the arguments of a Region.WriteAt call, including the
// region limit
func CheckWrite(off int64, bufSize, length int, blockSize, limit int64) error {
	if err := CheckAccess(off, bufSize, blockSize); err != nil {
		return err
	}
	if length < 0 || length > bufSize {
		return ErrBufferSize
	}
	if off > limit-int64(length) {
		return ErrOutOfRange
	}
	return nil
}
