//Package ramregion provides a heap backed ioregion.Region for scratch
// volumes and tests. It offers no durability, so Sync reports unsupported.
package ramregion

import (
	"io"
	"sync/atomic"

	"github.com/udsgo/ioregion/pkg/ioregion"
	"github.com/udsgo/ioregion/pkg/util/consterr"
)

const errFreed = consterr.ConstErr("Region has been freed")

//RAMRegion is a simple memory (heap) backed ioregion.Region
type RAMRegion struct {
	ioregion.RefCount
	buf       []byte
	blockSize int64
	limit     int64

	atomicExtent int64
	atomicLive   uint64
}

var _ ioregion.Region = &RAMRegion{} //compile time interface check

//New constructs a memory backed region of the provided limit, holding the
// caller's reference
func New(blockSize, limit int64) *RAMRegion {
	return &RAMRegion{
		RefCount:   ioregion.NewRefCount(),
		buf:        make([]byte, int(limit)),
		blockSize:  blockSize,
		limit:      limit,
		atomicLive: 1,
	}
}

//BlockSize fufills part of ioregion.Region
func (rreg *RAMRegion) BlockSize() int64 {
	return rreg.blockSize
}

//DataSize fufills part of ioregion.Region; writes are tracked precisely
func (rreg *RAMRegion) DataSize() (int64, error) {
	if atomic.LoadUint64(&rreg.atomicLive) != 1 {
		return 0, errFreed
	}
	return atomic.LoadInt64(&rreg.atomicExtent), nil
}

//Limit fufills part of ioregion.Region
func (rreg *RAMRegion) Limit() (int64, error) {
	if atomic.LoadUint64(&rreg.atomicLive) != 1 {
		return 0, errFreed
	}
	return rreg.limit, nil
}

//ReadAt fufills part of ioregion.Region
func (rreg *RAMRegion) ReadAt(buf []byte, off int64, minLength int) (int, error) {
	if atomic.LoadUint64(&rreg.atomicLive) != 1 {
		return 0, errFreed
	}
	if err := ioregion.CheckRead(off, len(buf), minLength, rreg.blockSize); err != nil {
		return 0, err
	}

	avail := atomic.LoadInt64(&rreg.atomicExtent) - off
	if avail <= 0 {
		return 0, io.EOF
	}
	count := len(buf)
	if int64(count) > avail {
		count = int(avail)
	}
	copy(buf[:count], rreg.buf[off:off+int64(count)])
	if count < minLength {
		return count, ioregion.ErrShortRead
	}
	return count, nil
}

//WriteAt fufills part of ioregion.Region; short writes are accepted
func (rreg *RAMRegion) WriteAt(buf []byte, off int64, length int) error {
	if atomic.LoadUint64(&rreg.atomicLive) != 1 {
		return errFreed
	}
	if err := ioregion.CheckWrite(off, len(buf), length, rreg.blockSize, rreg.limit); err != nil {
		return err
	}

	copy(rreg.buf[off:off+int64(length)], buf[:length])
	for end := off + int64(length); ; {
		cur := atomic.LoadInt64(&rreg.atomicExtent)
		if end <= cur || atomic.CompareAndSwapInt64(&rreg.atomicExtent, cur, end) {
			break
		}
	}
	return nil
}

//Sync fufills part of ioregion.Region; memory offers no durability
func (rreg *RAMRegion) Sync() error {
	if atomic.LoadUint64(&rreg.atomicLive) != 1 {
		return errFreed
	}
	return ioregion.ErrUnsupported
}

//Free fufills part of ioregion.Region; it is invoked by the final
// ioregion.Put and must not be called directly
func (rreg *RAMRegion) Free() error {
	atomic.StoreUint64(&rreg.atomicLive, 0)
	rreg.buf = nil
	return nil
}
