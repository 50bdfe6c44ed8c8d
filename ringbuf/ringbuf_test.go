package ringbuf

import "testing"

func TestReserveCommitRoundTrip(t *testing.T) {
	rb := New(16)

	span := rb.ReserveWrite()
	if len(span) != 16 {
		t.Fatalf("expected free span of 16, got %d", len(span))
	}
	n := copy(span, []byte("hello"))
	rb.CommitWrite(n)

	if rb.Len() != 5 {
		t.Fatalf("expected occupancy 5, got %d", rb.Len())
	}

	read := rb.ReserveRead()
	if string(read) != "hello" {
		t.Fatalf("unexpected read span: %q", read)
	}
	rb.CommitRead(5)

	if !rb.IsEmpty() {
		t.Fatalf("expected buffer to be empty after full drain")
	}
}

func TestWriteShortOnOverflow(t *testing.T) {
	rb := New(4)
	n := rb.Write([]byte("hello world"))
	if n != 4 {
		t.Fatalf("expected short write of 4 bytes, got %d", n)
	}
	if rb.Free() != 0 {
		t.Fatalf("expected buffer full, free=%d", rb.Free())
	}
}

func TestCompactPreservesLiveBytes(t *testing.T) {
	rb := New(8)
	rb.Write([]byte("abcdefgh"))
	rb.CommitRead(4) // head=4, tail=8, live="efgh"

	rb.Compact()
	if rb.head != 0 {
		t.Fatalf("expected head reset to 0 after compact, got %d", rb.head)
	}
	if string(rb.ReserveRead()) != "efgh" {
		t.Fatalf("compact altered live bytes: %q", rb.ReserveRead())
	}
	if rb.Free() != 4 {
		t.Fatalf("expected 4 bytes free after compact, got %d", rb.Free())
	}
}

func TestInterleavedCommitsPreserveFIFOOrder(t *testing.T) {
	rb := New(32)
	var produced, consumed []byte

	write := func(s string) {
		n := rb.Write([]byte(s))
		produced = append(produced, s[:n]...)
		rb.Compact()
	}
	drain := func(n int) {
		span := rb.ReserveRead()
		if n > len(span) {
			n = len(span)
		}
		consumed = append(consumed, span[:n]...)
		rb.CommitRead(n)
		rb.Compact()
	}

	write("foo")
	drain(2)
	write("bar")
	drain(4)
	write("baz")
	drain(100)

	if string(produced) != string(consumed) {
		t.Fatalf("FIFO violated: produced %q consumed %q", produced, consumed)
	}
	if !rb.IsEmpty() {
		t.Fatalf("expected buffer drained, occupancy=%d", rb.Len())
	}
}

func TestResetDiscardsLiveBytes(t *testing.T) {
	rb := New(8)
	rb.Write([]byte("data"))
	rb.Reset()
	if rb.Len() != 0 {
		t.Fatalf("expected Len 0 after Reset, got %d", rb.Len())
	}
	if rb.Free() != 8 {
		t.Fatalf("expected full free space after Reset, got %d", rb.Free())
	}
}
