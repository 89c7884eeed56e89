package capture

import "sync"

// Reusable BGR24 buffers. Frames are written synchronously, so a buffer can be
// returned right after the sink write.
var bgrPool sync.Pool // stores *[]byte

// acquireBGR returns a buffer of exactly n bytes.
func acquireBGR(n int) *[]byte {
	if v := bgrPool.Get(); v != nil {
		b := v.(*[]byte)
		if cap(*b) >= n {
			*b = (*b)[:n]
			return b
		}
	}
	b := make([]byte, n)
	return &b
}

// releaseBGR returns the buffer to the pool. It must not be used afterwards.
func releaseBGR(b *[]byte) {
	if b == nil || *b == nil {
		return
	}
	bgrPool.Put(b)
}
