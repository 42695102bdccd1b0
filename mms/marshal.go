package mms

import (
	"fmt"

	"github.com/psanford/gsmd/sbuf"
)

// Marshal encodes msg into a new byte slice.
func Marshal(msg *Message) ([]byte, error) {
	buf := sbuf.New()
	if err := Encode(buf, msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode appends the PDU for msg to buf. Nothing is written to buf on
// failure, and msg is not modified.
//
// Message type, transaction id and version are written first. Content-Type
// is written last, followed by the body. A message that has parts, or whose
// type carries a body, gets application/vnd.wap.multipart.mixed when it has
// no Content-Type of its own.
func Encode(buf *sbuf.Buffer, msg *Message) error {
	e := newScratch()
	if err := e.encodeMessage(msg); err != nil {
		return err
	}
	return buf.Put(e.buf.Bytes())
}

// m-delivery-ind and the read reports have no X-Mms-Transaction-Id.
func needsTransactionID(t MessageType) bool {
	switch t {
	case MDeliveryInd, MReadRecInd, MReadOrigInd:
		return false
	}
	return true
}

// topLevel reports whether id survives a decode of the PDU header, which
// resolves codes in the MMS table before the WSP table.
func topLevel(id FieldID) bool {
	switch id.Namespace {
	case NamespaceMMS:
		return true
	case NamespaceWSP:
		return findInfo(mmsFields, id.Code) == nil
	}
	return false
}

func carriesBody(t MessageType) bool {
	return t == MSendReq || t == MRetrieveConf
}

func (e *encoder) encodeMessage(msg *Message) error {
	rest := msg.Headers.Clone()

	mtv, ok := rest.Get(FieldMessageType)
	if !ok {
		return fmt.Errorf("%s: %w", FieldMessageType, ErrRequiredField)
	}
	mt, _ := mtv.(MessageType)
	rest.Del(FieldMessageType)

	front := []Header{{ID: FieldMessageType.ID(), Value: mtv}}
	if txid, ok := rest.Get(FieldTransactionID); ok {
		front = append(front, Header{ID: FieldTransactionID.ID(), Value: txid})
		rest.Del(FieldTransactionID)
	} else if needsTransactionID(mt) {
		return fmt.Errorf("%s: %w", FieldTransactionID, ErrRequiredField)
	}
	ver, ok := rest.Get(FieldMMSVersion)
	if !ok {
		return fmt.Errorf("%s: %w", FieldMMSVersion, ErrRequiredField)
	}
	front = append(front, Header{ID: FieldMMSVersion.ID(), Value: ver})
	rest.Del(FieldMMSVersion)

	ctv, hasCT := rest.Get(FieldContentType)
	rest.Del(FieldContentType)
	if !hasCT && (carriesBody(mt) || len(msg.Parts) > 0) {
		ctv, hasCT = &ContentType{Media: MediaWAPMultipartMixed}, true
	}

	for _, h := range front {
		if err := e.encodeHeader(h); err != nil {
			return err
		}
	}
	for _, h := range rest {
		if !topLevel(h.ID) {
			return fmt.Errorf("header %s cannot appear in a PDU header: %w", h.FieldName(), ErrInvalidValue)
		}
		if err := e.encodeHeader(h); err != nil {
			return err
		}
	}
	if !hasCT {
		return nil
	}

	if err := e.encodeHeader(Header{ID: FieldContentType.ID(), Value: ctv}); err != nil {
		return err
	}
	ct, ok := ctv.(*ContentType)
	if !ok {
		return fmt.Errorf("%s of kind %s: %w", FieldContentType, ctv.Kind(), ErrInvalidValue)
	}
	if !ct.IsMultipart() {
		switch len(msg.Parts) {
		case 0:
			return nil
		case 1:
			return e.buf.Put(msg.Parts[0].Data.Bytes())
		}
		return fmt.Errorf("%d parts under single part content type %s: %w", len(msg.Parts), ct.MediaName(), ErrInvalidValue)
	}
	return e.encodeBody(msg.Parts)
}

func (e *encoder) encodeBody(parts []Part) error {
	if err := e.encodeVarUint(uint32(len(parts))); err != nil {
		return err
	}
	for i := range parts {
		if err := e.encodePart(&parts[i]); err != nil {
			return fmt.Errorf("mime part %d: %w", i, err)
		}
	}
	return nil
}

func (e *encoder) encodePart(p *Part) error {
	hdrs := p.Headers.Clone()
	ctv, ok := hdrs.Take(WSPContentType)
	if !ok {
		return fmt.Errorf("%s: %w", WSPContentType, ErrRequiredField)
	}
	ct, ok := ctv.(*ContentType)
	if !ok {
		return fmt.Errorf("%s of kind %s: %w", WSPContentType, ctv.Kind(), ErrInvalidValue)
	}

	scratch := newScratch()
	if err := scratch.encodeContentType(ct); err != nil {
		return err
	}
	if err := WriteWSPHeaders(scratch.buf, hdrs); err != nil {
		return err
	}
	if err := scratch.buf.Put(p.ExtraHeaders.Bytes()); err != nil {
		return err
	}

	if err := e.encodeVarUint(uint32(scratch.buf.Len())); err != nil {
		return err
	}
	if err := e.encodeVarUint(uint32(p.Data.Len())); err != nil {
		return err
	}
	if err := e.buf.Put(scratch.buf.Bytes()); err != nil {
		return err
	}
	return e.buf.Put(p.Data.Bytes())
}
