package pool

import "testing"

func TestAllocateReturnsUsableBuffer(t *testing.T) {
	p := New(64)
	b := p.Allocate()
	if b.Cap() != 64 {
		t.Fatalf("expected capacity 64, got %d", b.Cap())
	}
	dst := b.ReserveWrite()
	n := copy(dst, []byte("hi"))
	b.CommitWrite(n)
	if b.Len() != 2 {
		t.Fatalf("expected 2 live bytes, got %d", b.Len())
	}
}

func TestReleaseRecyclesAndResets(t *testing.T) {
	p := New(64)
	b := p.Allocate()
	b.CommitWrite(copy(b.ReserveWrite(), []byte("data")))
	p.Release(b)

	if p.Len() != 1 {
		t.Fatalf("expected 1 idle buffer after release, got %d", p.Len())
	}
	reused := p.Allocate()
	if reused != b {
		t.Fatalf("expected Allocate to hand back the released buffer (LIFO)")
	}
	if !reused.IsEmpty() {
		t.Fatalf("expected released buffer to be reset before reuse")
	}
}

func TestPrepoolSeedsFreeList(t *testing.T) {
	p := New(32)
	p.Prepool(3)
	if p.Len() != 3 {
		t.Fatalf("expected 3 prepooled buffers, got %d", p.Len())
	}
	p.Allocate()
	if p.Len() != 2 {
		t.Fatalf("expected Allocate to consume one prepooled buffer")
	}
}
