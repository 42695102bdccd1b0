package mms

import "errors"

var (
	ErrInvalidData    = errors.New("mms: invalid data")
	ErrBadLength      = errors.New("mms: bad length")
	ErrInvalidValue   = errors.New("mms: invalid value")
	ErrUnknownField   = errors.New("mms: unknown field")
	ErrLookupFailed   = errors.New("mms: lookup failed")
	ErrUnsupported    = errors.New("mms: unsupported")
	ErrNoCodec        = errors.New("mms: no codec for value kind")
	ErrRequiredField  = errors.New("mms: required field missing")
	ErrSourceReleased = errors.New("mms: source buffer released while message borrows from it")
)
