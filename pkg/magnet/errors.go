package magnet

import "errors"

var (
	ErrInvalidHashType     = errors.New("invalid hash type")
	ErrInvalidHashEncoding = errors.New("invalid hash encoding")
	ErrHashTooLong         = errors.New("hash too long")
	ErrHashLengthMismatch  = errors.New("hash length mismatch")
	ErrMalformedRecord     = errors.New("malformed record")
	ErrUnknownTypeCode     = errors.New("unknown hash type code")
	ErrMalformedURI        = errors.New("malformed magnet uri")
)
