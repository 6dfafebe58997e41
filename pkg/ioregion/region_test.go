package ioregion

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

//stubRegion counts teardowns and records read arguments so the dispatch and
// lifetime wrappers can be tested without a real backing medium
type stubRegion struct {
	RefCount
	frees       int32
	lastMinimum int
}

func newStubRegion() *stubRegion {
	return &stubRegion{RefCount: NewRefCount()}
}

func (sreg *stubRegion) BlockSize() int64         { return 1 }
func (sreg *stubRegion) DataSize() (int64, error) { return 0, nil }
func (sreg *stubRegion) Limit() (int64, error)    { return Unbounded, nil }
func (sreg *stubRegion) Sync() error              { return ErrUnsupported }

func (sreg *stubRegion) ReadAt(buf []byte, off int64, minLength int) (int, error) {
	sreg.lastMinimum = minLength
	return len(buf), nil
}

func (sreg *stubRegion) WriteAt(buf []byte, off int64, length int) error {
	return nil
}

func (sreg *stubRegion) Free() error {
	atomic.AddInt32(&sreg.frees, 1)
	return nil
}

func TestGetPutNetZero(t *testing.T) {
	sreg := newStubRegion()

	Get(sreg)
	if err := Put(sreg); err != nil {
		t.Fatalf("Balanced put failed: %s", err)
	}
	if frees := atomic.LoadInt32(&sreg.frees); frees != 0 {
		t.Fatalf("Region was torn down %d times while a live reference remained", frees)
	}

	if _, err := ReadFull(sreg, make([]byte, 1), 0); err != nil {
		t.Fatalf("Region was not usable after a balanced get/put pair: %s", err)
	}

	if err := Put(sreg); err != nil {
		t.Fatalf("Final put failed: %s", err)
	}
	if frees := atomic.LoadInt32(&sreg.frees); frees != 1 {
		t.Fatalf("Expected exactly one teardown after the final put, got %d", frees)
	}
}

func TestPutFreesExactlyOnce(t *testing.T) {
	const refs = 64

	sreg := newStubRegion()
	for i := 0; i < refs; i++ {
		Get(sreg)
	}
	for i := 0; i < refs; i++ {
		if err := Put(sreg); err != nil {
			t.Fatalf("Put %d of %d failed: %s", i+1, refs, err)
		}
	}
	if frees := atomic.LoadInt32(&sreg.frees); frees != 0 {
		t.Fatalf("Region was torn down %d times while the creator's reference remained", frees)
	}

	if err := Put(sreg); err != nil {
		t.Fatalf("Final put failed: %s", err)
	}
	if frees := atomic.LoadInt32(&sreg.frees); frees != 1 {
		t.Fatalf("Expected exactly one teardown, got %d", frees)
	}
}

func TestConcurrentGetPut(t *testing.T) {
	const (
		holders    = 32
		iterations = 1000
	)

	sreg := newStubRegion()
	var wg sync.WaitGroup
	wg.Add(holders)
	for i := 0; i < holders; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				Get(sreg)
				if _, err := sreg.DataSize(); err != nil {
					t.Errorf("Use under a live reference failed: %s", err)
					return
				}
				if err := Put(sreg); err != nil {
					t.Errorf("Put failed: %s", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if frees := atomic.LoadInt32(&sreg.frees); frees != 0 {
		t.Fatalf("Region was torn down %d times while the creator's reference remained", frees)
	}
	if err := Put(sreg); err != nil {
		t.Fatalf("Final put failed: %s", err)
	}
	if frees := atomic.LoadInt32(&sreg.frees); frees != 1 {
		t.Fatalf("Expected exactly one teardown across %d concurrent holders, got %d", holders, frees)
	}
}

func TestReadFullRequiresWholeBuffer(t *testing.T) {
	sreg := newStubRegion()
	defer Put(sreg)

	buf := make([]byte, 16)
	if _, err := ReadFull(sreg, buf, 0); err != nil {
		t.Fatalf("ReadFull failed: %s", err)
	}
	if sreg.lastMinimum != len(buf) {
		t.Fatalf("ReadFull required %d bytes rather than the whole %d byte buffer", sreg.lastMinimum, len(buf))
	}
}

func TestCheckAccess(t *testing.T) {
	const blockSize = 4096

	if err := CheckAccess(blockSize*3, blockSize*2, blockSize); err != nil {
		t.Fatalf("Aligned access was rejected: %s", err)
	}
	if err := CheckAccess(100, blockSize, blockSize); !errors.Is(err, ErrAlignment) {
		t.Fatalf("Misaligned offset yielded %v rather than ErrAlignment", err)
	}
	if err := CheckAccess(-blockSize, blockSize, blockSize); !errors.Is(err, ErrAlignment) {
		t.Fatalf("Negative offset yielded %v rather than ErrAlignment", err)
	}
	if err := CheckAccess(0, blockSize-1, blockSize); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("Undersized buffer yielded %v rather than ErrBufferSize", err)
	}
}

func TestCheckRead(t *testing.T) {
	const blockSize = 512

	if err := CheckRead(0, blockSize*2, blockSize, blockSize); err != nil {
		t.Fatalf("Valid read arguments were rejected: %s", err)
	}
	if err := CheckRead(0, blockSize, blockSize+1, blockSize); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("Minimum beyond the buffer yielded %v rather than ErrBufferSize", err)
	}
	if err := CheckRead(0, blockSize, -1, blockSize); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("Negative minimum yielded %v rather than ErrBufferSize", err)
	}
}

func TestCheckWrite(t *testing.T) {
	const (
		blockSize = 512
		limit     = blockSize * 8
	)

	if err := CheckWrite(0, blockSize, blockSize, blockSize, limit); err != nil {
		t.Fatalf("Valid write arguments were rejected: %s", err)
	}
	if err := CheckWrite(limit-blockSize, blockSize, blockSize, blockSize, limit); err != nil {
		t.Fatalf("Write of the final block was rejected: %s", err)
	}
	if err := CheckWrite(limit, blockSize, blockSize, blockSize, limit); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Write past the limit yielded %v rather than ErrOutOfRange", err)
	}
	if err := CheckWrite(0, blockSize, blockSize+1, blockSize, limit); !errors.Is(err, ErrBufferSize) {
		t.Fatalf("Length beyond the buffer yielded %v rather than ErrBufferSize", err)
	}
	if err := CheckWrite(0, blockSize, blockSize, blockSize, Unbounded); err != nil {
		t.Fatalf("Write within an unbounded region was rejected: %s", err)
	}
}
