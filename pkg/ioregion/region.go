//Package ioregion defines the polymorphic, reference-counted handle a
// deduplication index uses to read and write its persistent volume without
// knowing whether the backing medium is a regular file, a memory mapping or
// a raw block-device extent.
package ioregion

import (
	"math"
	"sync/atomic"
)

//Unbounded is the limit reported by regions with no upper bound
const Unbounded = int64(math.MaxInt64)

//Region is a specific place that can be read or written. There are file
// based implementations as well as block-range based implementations.
// Although the operations appear to accept arbitrary byte addresses,
// offsets and buffer sizes are constrained by the implementation's block
// alignment; see the errors declared in this package for the uniform
// vocabulary violations are reported in.
//
//A Region is shared between concurrent holders via Get and Put rather than
// being copied. Implementations embed a RefCount and their constructors
// return it holding the creator's single reference (see NewRefCount).
type Region interface {
	//BlockSize reports the alignment and size-multiple unit for offsets
	// and buffers
	BlockSize() int64

	//DataSize reports the maximum offset of previously written data.
	// Implementations that cannot track this report their limit instead.
	DataSize() (int64, error)

	//Limit reports the maximum valid offset; implementations without an
	// upper bound report Unbounded
	Limit() (int64, error)

	//ReadAt transfers up to len(buf) bytes starting at off into buf and
	// reports how many were placed there. The offset must be aligned to
	// the block size and len(buf) must be a multiple of it. At least
	// minLength bytes must be available: a shorter read is ErrShortRead
	// if any data was available and io.EOF if none was. Pass len(buf) as
	// minLength (or use ReadFull) to require the entire buffer.
	ReadAt(buf []byte, off int64, minLength int) (count int, err error)

	//WriteAt transfers the first length bytes of buf to the region
	// starting at off. Alignment rules mirror ReadAt; len(buf) must be a
	// multiple of the block size and off+length must not exceed the
	// region limit. Whether length may be less than len(buf) is
	// implementation specific; implementations that need whole buffers
	// reject short writes rather than truncating them.
	WriteAt(buf []byte, off int64, length int) error

	//Sync forces previously written data to the backing store.
	// Implementations without durability support return ErrUnsupported.
	Sync() error

	//Free tears down the backing resources. It is invoked by the Put
	// that releases the last reference and must never be called directly
	// by Region users.
	Free() error

	refCounted
}

//refCounted is satisfied by embedding RefCount
type refCounted interface {
	addRef() int32
	dropRef() int32
}

//RefCount is the shared live-reference count every Region implementation
// embeds. The zero value holds no references; constructors must use
// NewRefCount so the creator starts with exactly one.
type RefCount struct {
	refs int32
}

//NewRefCount returns a counter holding the creator's single reference
func NewRefCount() RefCount {
	return RefCount{refs: 1}
}

func (rc *RefCount) addRef() int32  { return atomic.AddInt32(&rc.refs, 1) }
func (rc *RefCount) dropRef() int32 { return atomic.AddInt32(&rc.refs, -1) }

//Get acquires another reference to region. It never fails and is safe to
// call concurrently from any holder of a live reference.
func Get(region Region) {
	region.addRef()
}

//Put releases a reference to region. The release that observes a
// non-positive count after its single atomic decrement invokes Free exactly
// once and reports its error; every other release returns nil. Callers must
// balance the constructor's reference and every Get with exactly one Put
// and must not touch region after their final Put.
func Put(region Region) error {
	if region.dropRef() <= 0 {
		return region.Free()
	}
	return nil
}

//ReadFull reads into the entirety of buf, requiring len(buf) bytes
func ReadFull(region Region, buf []byte, off int64) (int, error) {
	return region.ReadAt(buf, off, len(buf))
}

//Write writes the entirety of buf
func Write(region Region, buf []byte, off int64) error {
	return region.WriteAt(buf, off, len(buf))
}
