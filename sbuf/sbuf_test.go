package sbuf

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPutGrows(t *testing.T) {
	b := NewWithCapacity(2)
	if err := b.Put([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := b.PutByte(' '); err != nil {
		t.Fatal(err)
	}
	if err := b.PutString("world"); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("hello world", string(b.Bytes())); diff != "" {
		t.Fatalf("contents mismatch (-want +got):\n%s", diff)
	}
	if b.Cap() < b.Len() {
		t.Fatalf("cap %d < len %d", b.Cap(), b.Len())
	}
	if b.Offset() != 0 {
		t.Fatalf("write moved cursor to %d", b.Offset())
	}
}

func TestReadPastEnd(t *testing.T) {
	b := FromBytes([]byte{0x01, 0x02})

	for i, want := range []byte{0x01, 0x02} {
		got, err := b.NextByte()
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("byte %d: got 0x%x want 0x%x", i, got, want)
		}
	}

	if _, err := b.PeekByte(); !errors.Is(err, ErrEOS) {
		t.Fatalf("peek at end: got %v want ErrEOS", err)
	}
	if _, err := b.NextByte(); !errors.Is(err, ErrEOS) {
		t.Fatalf("next at end: got %v want ErrEOS", err)
	}
	if b.Offset() != 2 {
		t.Fatalf("failed read moved cursor to %d", b.Offset())
	}
}

func TestNextWindow(t *testing.T) {
	src := []byte("abcdef")
	b := FromBytes(src)

	w, err := b.Next(3)
	if err != nil {
		t.Fatal(err)
	}
	if string(w) != "abc" {
		t.Fatalf("got %q", w)
	}
	if &w[0] != &src[0] {
		t.Fatal("window does not alias the source")
	}

	if _, err := b.Next(4); !errors.Is(err, ErrEOS) {
		t.Fatalf("oversized window: got %v want ErrEOS", err)
	}
	if b.Offset() != 3 {
		t.Fatalf("failed Next moved cursor to %d", b.Offset())
	}

	// appending to a window must not clobber the source
	w = append(w, 'X')
	if string(src) != "abcdef" {
		t.Fatalf("source modified: %q", src)
	}
}

func TestSeek(t *testing.T) {
	b := FromBytes([]byte("0123456789"))

	tests := []struct {
		name    string
		offset  int64
		whence  int
		want    int64
		wantErr error
	}{
		{"start", 4, io.SeekStart, 4, nil},
		{"current forward", 3, io.SeekCurrent, 7, nil},
		{"current back", -2, io.SeekCurrent, 5, nil},
		{"end", -1, io.SeekEnd, 9, nil},
		{"exactly end", 0, io.SeekEnd, 10, nil},
		{"past end", 11, io.SeekStart, 0, ErrBadSeekOffset},
		{"negative", -1, io.SeekStart, 0, ErrBadSeekOffset},
		{"bad origin", 0, 42, 0, ErrBadSeekOrigin},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := b.Offset()
			got, err := b.Seek(tc.offset, tc.whence)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("got err %v want %v", err, tc.wantErr)
				}
				if b.Offset() != before {
					t.Fatalf("failed seek moved cursor from %d to %d", before, b.Offset())
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want || int64(b.Offset()) != tc.want {
				t.Fatalf("got %d (offset %d) want %d", got, b.Offset(), tc.want)
			}
		})
	}
}

func TestFindNext(t *testing.T) {
	b := FromBytes([]byte{'a', 'b', 0, 'c', 0})

	if n := b.FindNext(0); n != 2 {
		t.Fatalf("got %d want 2", n)
	}
	if _, err := b.Seek(3, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if n := b.FindNext(0); n != 1 {
		t.Fatalf("got %d want 1", n)
	}
	if n := b.FindNext('z'); n != -1 {
		t.Fatalf("got %d want -1", n)
	}
	if _, err := b.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	if n := b.FindNext(0); n != -1 {
		t.Fatalf("at end: got %d want -1", n)
	}
}

func TestTruncate(t *testing.T) {
	b := New()
	b.PutString("abcdef")
	if _, err := b.Seek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if err := b.Truncate(3); err != nil {
		t.Fatal(err)
	}
	if string(b.Bytes()) != "abc" {
		t.Fatalf("got %q", b.Bytes())
	}
	if err := b.Truncate(2); !errors.Is(err, ErrBadSeekOffset) {
		t.Fatalf("truncate before cursor: got %v", err)
	}
}

func TestRelease(t *testing.T) {
	b := FromBytes([]byte("abc"))
	b.Release()

	if !b.Released() {
		t.Fatal("expected Released")
	}
	if _, err := b.NextByte(); !errors.Is(err, ErrReleased) {
		t.Fatalf("got %v want ErrReleased", err)
	}
	if err := b.PutByte('x'); !errors.Is(err, ErrReleased) {
		t.Fatalf("got %v want ErrReleased", err)
	}
	if b.FindNext('a') != -1 {
		t.Fatal("find on released buffer")
	}
}
