package schema

import (
	"sync"
	"sync/atomic"
)

// Freelist is a small-object pool for Instance value-vectors, keyed by
// slot count (the number of fields a struct type declares). It mirrors
// the teacher's size-tiered byte-buffer pools, rekeyed by field count
// instead of byte size, with two tunable bounds: the largest slot count
// served at all, and the largest number of vectors retained per bucket.
type Freelist struct {
	pools        []sync.Pool
	counts       []atomic.Int64
	maxSlotCount atomic.Int64
	maxRetained  atomic.Int64
}

// NewFreelist builds a Freelist serving slot counts up to maxSlotCount,
// retaining at most maxRetainedPerBucket vectors per slot-count bucket.
func NewFreelist(maxSlotCount, maxRetainedPerBucket int) *Freelist {
	if maxSlotCount < 0 {
		maxSlotCount = 0
	}
	fl := &Freelist{
		pools:  make([]sync.Pool, maxSlotCount+1),
		counts: make([]atomic.Int64, maxSlotCount+1),
	}
	for i := range fl.pools {
		n := i
		fl.pools[i].New = func() any { return make([]any, n) }
	}
	fl.maxSlotCount.Store(int64(maxSlotCount))
	fl.maxRetained.Store(int64(maxRetainedPerBucket))
	return fl
}

// defaultFreelist backs Instances built through StructMeta.Construct and
// the decoders unless a caller installs a different one.
var defaultFreelist = NewFreelist(64, 256)

// get returns a zeroed []any of length n, from the pool when possible.
// sync.Pool gives no way to tell a recycled value apart from one its New
// func just synthesized, so counts is not adjusted here — only put counts
// retained vectors, which is what maxRetainedPerBucket actually bounds.
func (fl *Freelist) get(n int) []any {
	if n < 0 || n >= len(fl.pools) || int64(n) > fl.maxSlotCount.Load() {
		return make([]any, n)
	}
	v := fl.pools[n].Get().([]any)
	for i := range v {
		v[i] = nil
	}
	return v
}

// put returns v to the pool if its bucket has room; otherwise it is
// dropped for the garbage collector to reclaim.
func (fl *Freelist) put(v []any) {
	n := len(v)
	if n < 0 || n >= len(fl.pools) || int64(n) > fl.maxSlotCount.Load() {
		return
	}
	if fl.counts[n].Load() >= fl.maxRetained.Load() {
		return
	}
	for i := range v {
		v[i] = nil
	}
	fl.pools[n].Put(v)
	fl.counts[n].Add(1)
}

// SetLimits adjusts the two tunable bounds at runtime.
func (fl *Freelist) SetLimits(maxSlotCount, maxRetainedPerBucket int) {
	if maxSlotCount >= len(fl.pools) {
		maxSlotCount = len(fl.pools) - 1
	}
	fl.maxSlotCount.Store(int64(maxSlotCount))
	fl.maxRetained.Store(int64(maxRetainedPerBucket))
}

// Shrink clears every bucket, releasing retained vectors to the garbage
// collector. This is the explicit stand-in for the "clear on major GC"
// hook described for the source's freelist.
func (fl *Freelist) Shrink() {
	for i := range fl.pools {
		fl.pools[i] = sync.Pool{New: fl.pools[i].New}
		fl.counts[i].Store(0)
	}
}
