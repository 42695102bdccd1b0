package mms

import "bytes"

// Data is a byte payload that either borrows a window of a decode buffer
// or owns its own copy. A borrowed Data is only valid while the buffer it
// was decoded from is alive; Clone produces an owned copy.
type Data struct {
	b     []byte
	owned bool
}

// Borrow wraps b without copying.
func Borrow(b []byte) Data {
	return Data{b: b}
}

// Own copies b.
func Own(b []byte) Data {
	if b == nil {
		return Data{owned: true}
	}
	c := make([]byte, len(b))
	copy(c, b)
	return Data{b: c, owned: true}
}

func OwnString(s string) Data {
	return Data{b: []byte(s), owned: true}
}

func (d Data) Owned() bool { return d.owned }

// Borrowed reports whether d references memory it does not own.
func (d Data) Borrowed() bool { return !d.owned && len(d.b) > 0 }

// Bytes returns the payload. Callers must not modify a borrowed payload.
func (d Data) Bytes() []byte { return d.b }

func (d Data) Len() int { return len(d.b) }

func (d Data) String() string { return string(d.b) }

func (d Data) Clone() Data { return Own(d.b) }

// Equal compares contents, ignoring ownership.
func (d Data) Equal(o Data) bool { return bytes.Equal(d.b, o.b) }

func (d Data) detach() Data {
	if d.Borrowed() {
		return d.Clone()
	}
	return d
}
