// ABOUTME: Lock-free single-producer/single-consumer ring of float32 samples
// ABOUTME: Hand-off point between the decode goroutine and the output callback
package ring

import (
	"context"
	"math"
	"math/bits"
	"sync/atomic"
)

// DefaultCapacity is used when New is given a non-positive capacity
const DefaultCapacity = 1 << 16

// Buffer is a bounded FIFO of samples.
//
// Exactly one goroutine may call Write/WriteContext and exactly one may call
// Read at any time. Flush, Len, Cap and the counters are safe from any goroutine.
//
// Positions are monotonically increasing counters; slot = position & mask.
// Flush publishes the producer position observed at the instant it runs as a
// floor for the read position, so samples written after the flush survive it.
// The producer may reuse flushed slots at once; a Read that overlaps a Flush
// detects the moved floor after copying and starts over from it.
type Buffer struct {
	slots []atomic.Uint32 // math.Float32bits of each sample
	mask  uint64

	write   atomic.Uint64 // advanced only by the producer
	read    atomic.Uint64 // advanced only by the consumer
	flushTo atomic.Uint64 // read floor set by Flush

	space chan struct{} // signalled when the consumer frees slots

	written atomic.Uint64
	flushed atomic.Uint64
}

// New creates a ring holding at least capacity samples (rounded up to a power of two)
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	size := uint64(1) << bits.Len64(uint64(capacity-1))

	return &Buffer{
		slots: make([]atomic.Uint32, size),
		mask:  size - 1,
		space: make(chan struct{}, 1),
	}
}

// Cap returns the number of samples the ring can hold
func (b *Buffer) Cap() int {
	return len(b.slots)
}

// Len returns the number of samples waiting to be read
func (b *Buffer) Len() int {
	w := b.write.Load()
	r := b.readPos()
	if r >= w {
		return 0
	}
	return int(w - r)
}

// Free returns the number of samples that can be written without blocking
func (b *Buffer) Free() int {
	return b.Cap() - b.Len()
}

// readPos is the effective read position: the consumer position or the flush floor
func (b *Buffer) readPos() uint64 {
	r := b.read.Load()
	if f := b.flushTo.Load(); f > r {
		return f
	}
	return r
}

// Write appends as many samples as fit and returns how many were written.
// It never blocks. Producer only.
func (b *Buffer) Write(samples []float32) int {
	w := b.write.Load()
	free := uint64(len(b.slots)) - (w - b.readPos())

	n := uint64(len(samples))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		b.slots[(w+i)&b.mask].Store(math.Float32bits(samples[i]))
	}
	b.write.Store(w + n)
	b.written.Add(n)

	return int(n)
}

// WriteContext appends all samples, waiting for the consumer to free space
// when the ring is full. It returns ctx.Err() if ctx is done first. Producer only.
func (b *Buffer) WriteContext(ctx context.Context, samples []float32) error {
	for len(samples) > 0 {
		n := b.Write(samples)
		samples = samples[n:]
		if len(samples) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.space:
		}
	}
	return nil
}

// Read removes up to len(dst) samples in FIFO order and returns how many were read.
// It never blocks and never allocates. Consumer only.
func (b *Buffer) Read(dst []float32) int {
	for {
		r, n := b.claim(len(dst))
		if n == 0 {
			return 0
		}
		if b.copyClaimed(dst[:n], r) {
			b.commit(r, n)
			return n
		}
	}
}

// Pop removes one sample. ok is false when the ring is empty. Consumer only.
func (b *Buffer) Pop() (sample float32, ok bool) {
	var one [1]float32
	if b.Read(one[:]) == 0 {
		return 0, false
	}
	return one[0], true
}

// claim returns the effective read position and how many of up to limit
// samples are available from it
func (b *Buffer) claim(limit int) (r uint64, n int) {
	r = b.readPos()
	w := b.write.Load()

	// r <= w: the flush floor never passes the producer position
	avail := w - r
	if uint64(limit) < avail {
		return r, limit
	}
	return r, int(avail)
}

// copyClaimed copies the claimed samples starting at r into dst. It reports
// false if a Flush moved the floor past r meanwhile: the producer may have
// reused those slots, so the copy is stale and must be discarded.
func (b *Buffer) copyClaimed(dst []float32, r uint64) bool {
	for i := range dst {
		dst[i] = math.Float32frombits(b.slots[(r+uint64(i))&b.mask].Load())
	}
	return b.flushTo.Load() <= r
}

// commit publishes the consumer position after a successful copy
func (b *Buffer) commit(r uint64, n int) {
	b.read.Store(r + uint64(n))
	b.signalSpace()
}

// Flush discards every sample written before the call. Safe from any goroutine.
func (b *Buffer) Flush() {
	w := b.write.Load()
	for {
		r := b.readPos()
		f := b.flushTo.Load()
		if r >= w || f >= w {
			break
		}
		if b.flushTo.CompareAndSwap(f, w) {
			b.flushed.Add(w - r)
			break
		}
	}
	b.signalSpace()
}

// Written returns the total number of samples ever written
func (b *Buffer) Written() uint64 {
	return b.written.Load()
}

// Flushed returns an estimate of the number of samples discarded by Flush
func (b *Buffer) Flushed() uint64 {
	return b.flushed.Load()
}

func (b *Buffer) signalSpace() {
	select {
	case b.space <- struct{}{}:
	default:
	}
}
