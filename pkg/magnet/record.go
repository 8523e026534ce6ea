package magnet

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

const (
	// RecordSize is the size of an encoded record in bytes.
	RecordSize = 32
	// MaxHashLen is the room left for the hash after the header.
	MaxHashLen = 26

	headerSize = 6
)

// MagicBytes prefixes every record.
var MagicBytes = [4]byte{'M', 'A', 'G', 'N'}

// Record is the fixed size binary form of a magnet hash:
//
//	magic(4) | type code(1) | hash length(1) | hash(26, zero padded)
type Record [RecordSize]byte

// TypeCode returns the registry code stored in the record.
func (r Record) TypeCode() uint8 { return r[4] }

// HashLen returns the unpadded hash length stored in the record.
func (r Record) HashLen() int { return int(r[5]) }

// Hex returns the record as 64 lowercase hex characters.
func (r Record) Hex() string {
	return hex.EncodeToString(r[:])
}

func (r Record) String() string {
	return r.Hex()
}

func (r Record) MarshalText() ([]byte, error) {
	return []byte(r.Hex()), nil
}

func (r *Record) UnmarshalText(text []byte) error {
	rec, err := ParseRecordHex(string(text))
	if err != nil {
		return err
	}

	*r = rec

	return nil
}

// ParseRecord validates the size and magic of raw record bytes.
func ParseRecord(b []byte) (Record, error) {
	var r Record

	if len(b) != RecordSize {
		return r, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedRecord, len(b), RecordSize)
	}

	if !bytes.Equal(b[:len(MagicBytes)], MagicBytes[:]) {
		return r, fmt.Errorf("%w: bad magic %x", ErrMalformedRecord, b[:len(MagicBytes)])
	}

	copy(r[:], b)

	return r, nil
}

// ParseRecordHex decodes a hex string and validates it as a record.
func ParseRecordHex(s string) (Record, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	return ParseRecord(b)
}

// Encode packs hash text of the named type into a record. The alias
// tree:tiger is accepted for tth, and a btih hash that is not hex is
// treated as btih-32.
func Encode(hash, hashType string) (Record, error) {
	var r Record

	name := resolveBTIH(NormalizeHashType(hashType), hash)

	ht, ok := LookupName(name)
	if !ok {
		return r, fmt.Errorf("%w: %q", ErrInvalidHashType, hashType)
	}

	raw, err := ht.Encoding.DecodeString(hash)
	if err != nil {
		return r, fmt.Errorf("%w: %s hash %q: %v", ErrInvalidHashEncoding, ht.Encoding, hash, err)
	}

	if len(raw) > MaxHashLen {
		return r, fmt.Errorf("%w: %d bytes, max %d", ErrHashTooLong, len(raw), MaxHashLen)
	}

	if len(raw) != ht.Length {
		return r, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrHashLengthMismatch, ht.Name, ht.Length, len(raw))
	}

	copy(r[:], MagicBytes[:])
	r[4] = ht.Code
	r[5] = byte(len(raw))
	copy(r[headerSize:], raw)

	return r, nil
}

// EncodeHex is Encode returning the record's hex form.
func EncodeHex(hash, hashType string) (string, error) {
	r, err := Encode(hash, hashType)
	if err != nil {
		return "", err
	}

	return r.Hex(), nil
}

// Decode unpacks a hex record into its hash type name and hash text.
func Decode(recordHex string) (hashType, hash string, err error) {
	r, err := ParseRecordHex(recordHex)
	if err != nil {
		return "", "", err
	}

	return DecodeRecord(r)
}

// DecodeRecord unpacks a record. btih-32 records decode to the name
// "btih-32"; RenderURI maps it back to btih.
func DecodeRecord(r Record) (hashType, hash string, err error) {
	if !bytes.Equal(r[:len(MagicBytes)], MagicBytes[:]) {
		return "", "", fmt.Errorf("%w: bad magic %x", ErrMalformedRecord, r[:len(MagicBytes)])
	}

	ht, ok := LookupCode(r.TypeCode())
	if !ok {
		return "", "", fmt.Errorf("%w: %d", ErrUnknownTypeCode, r.TypeCode())
	}

	n := r.HashLen()
	if n > MaxHashLen {
		return "", "", fmt.Errorf("%w: hash length %d exceeds %d", ErrMalformedRecord, n, MaxHashLen)
	}

	return ht.Name, ht.Encoding.EncodeToString(r[headerSize : headerSize+n]), nil
}
