package pool

import "testing"

func TestBufferPoolGet(t *testing.T) {
	bp := NewBufferPool(64)
	if bp.Size() != 64 {
		t.Fatalf("Size() = %d, want 64", bp.Size())
	}

	buf := bp.Get()
	if len(*buf) != 0 {
		t.Errorf("new buffer length = %d, want 0", len(*buf))
	}
	if cap(*buf) < 64 {
		t.Errorf("new buffer capacity = %d, want at least 64", cap(*buf))
	}

	*buf = append(*buf, "dirty"...)
	bp.Put(buf)

	again := bp.Get()
	if len(*again) != 0 {
		t.Errorf("reused buffer length = %d, want 0", len(*again))
	}
}

func TestBufferPoolPutOversized(t *testing.T) {
	bp := NewBufferPool(16)
	big := make([]byte, 0, maxPooledSize+1)
	bp.Put(&big)

	// The oversized buffer is dropped, so the pool never hands it back.
	for i := 0; i < 8; i++ {
		buf := bp.Get()
		if cap(*buf) > maxPooledSize {
			t.Fatalf("Get returned a buffer of capacity %d", cap(*buf))
		}
	}
}
