package stream

import "testing"

func TestBufferWriteReadRoundTrip(t *testing.T) {
	b := NewBuffer()
	if _, err := b.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if b.Len() != 5 {
		t.Fatalf("Len = %d, want 5", b.Len())
	}
	if _, err := b.Seek(0, SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 5)
	n, _ := b.Read(buf)
	if n != 5 || string(buf) != "hello" {
		t.Fatalf("Read = %q (n=%d), want hello", buf, n)
	}
}

func TestBufferSeekClamps(t *testing.T) {
	b := NewBuffer()
	b.Write([]byte("12345"))
	pos, _ := b.Seek(100, SeekSet)
	if pos != 5 {
		t.Fatalf("Seek clamp = %d, want 5", pos)
	}
	pos, _ = b.Seek(-100, SeekSet)
	if pos != 0 {
		t.Fatalf("Seek clamp = %d, want 0", pos)
	}
}

// TestTruncateIdempotence covers Testable Property 10: truncate brings
// the length to 0, and a repeated truncate leaves it at 0.
func TestTruncateIdempotence(t *testing.T) {
	b := NewBuffer()
	b.Write([]byte("data"))
	if err := b.Truncate(); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("Len after truncate = %d, want 0", b.Len())
	}
	if err := b.Truncate(); err != nil {
		t.Fatalf("second Truncate: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("Len after repeated truncate = %d, want 0", b.Len())
	}
}

func TestSeekReset(t *testing.T) {
	b := NewBuffer()
	b.Write([]byte("xyz"))
	b.Seek(0, SeekReset)
	if b.Len() != 0 || b.Tell() != 0 {
		t.Fatalf("after SeekReset: Len=%d Tell=%d, want 0/0", b.Len(), b.Tell())
	}
}

func TestWriteOverwritesInPlace(t *testing.T) {
	b := NewBuffer()
	b.Write([]byte("abcde"))
	b.Seek(1, SeekSet)
	b.Write([]byte("XY"))
	b.Seek(0, SeekSet)
	out := make([]byte, 5)
	b.Read(out)
	if string(out) != "aXYde" {
		t.Fatalf("got %q, want aXYde", out)
	}
}
