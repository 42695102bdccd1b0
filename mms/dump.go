package mms

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the MMS headers as Name=Value lines that ParseHeaders
// accepts. Values without a text form are written as comments.
func (h Headers) Dump(w io.Writer) error {
	for _, hdr := range h {
		if hdr.ID.Namespace != NamespaceMMS || hdr.Value == nil {
			continue
		}
		prefix := ""
		if _, ok := hdr.Value.(Opaque); ok {
			prefix = "# "
		}
		if _, err := fmt.Fprintf(w, "%s%s=%s\n", prefix, hdr.ID, hdr.Value); err != nil {
			return err
		}
	}
	return nil
}

// String renders the MMS headers in Dump format.
func (h Headers) String() string {
	var sb strings.Builder
	h.Dump(&sb)
	return sb.String()
}

// Dump writes a human readable summary of the message: all headers, then
// one block per part.
func (m *Message) Dump(w io.Writer) error {
	for _, hdr := range m.Headers {
		if _, err := fmt.Fprintf(w, "%s: %s\n", hdr.FieldName(), hdr.Value); err != nil {
			return err
		}
	}
	for i := range m.Parts {
		p := &m.Parts[i]
		if _, err := fmt.Fprintf(w, "\nPart %d: %s, %d bytes\n", i, p.ContentType(), p.Data.Len()); err != nil {
			return err
		}
		extra, err := p.DecodeExtraHeaders()
		if err != nil {
			if _, err := fmt.Fprintf(w, "  extra headers: %v\n", err); err != nil {
				return err
			}
			continue
		}
		for _, hdr := range extra {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", hdr.FieldName(), hdr.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
