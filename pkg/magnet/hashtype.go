package magnet

import (
	"encoding/base32"
	"encoding/hex"
	"strings"
)

// Encoding is the text form a hash type uses in magnet links.
type Encoding uint8

const (
	EncodingHex Encoding = iota
	EncodingBase32
)

func (e Encoding) String() string {
	switch e {
	case EncodingHex:
		return "hex"
	case EncodingBase32:
		return "base32"
	default:
		return "unknown"
	}
}

// EncodeToString renders raw hash bytes as text. Hex is lowercase, base32
// is uppercase RFC 4648 with padding.
func (e Encoding) EncodeToString(b []byte) string {
	if e == EncodingBase32 {
		return base32.StdEncoding.EncodeToString(b)
	}

	return hex.EncodeToString(b)
}

// DecodeString parses hash text. Both encodings are case-insensitive;
// base32 input must carry its padding.
func (e Encoding) DecodeString(s string) ([]byte, error) {
	if e == EncodingBase32 {
		// the std decoder skips line breaks instead of rejecting them
		if i := strings.IndexAny(s, "\r\n"); i >= 0 {
			return nil, base32.CorruptInputError(i)
		}

		return base32.StdEncoding.DecodeString(strings.ToUpper(s))
	}

	return hex.DecodeString(s)
}

// HashType describes one supported hash algorithm.
type HashType struct {
	Name     string
	Code     uint8
	Length   int
	Encoding Encoding
}

const (
	TypeBTIH   = "btih"
	TypeED2K   = "ed2k"
	TypeSHA1   = "sha1"
	TypeTTH    = "tth"
	TypeBTIH32 = "btih-32"

	// TigerTreeAlias is the URN namespace magnet links use for TTH.
	TigerTreeAlias = "tree:tiger"
)

// Codes are part of the record format and must never be reassigned.
var hashTypes = []HashType{
	{Name: TypeBTIH, Code: 0, Length: 20, Encoding: EncodingHex},
	{Name: TypeED2K, Code: 1, Length: 16, Encoding: EncodingHex},
	{Name: TypeSHA1, Code: 2, Length: 20, Encoding: EncodingBase32},
	{Name: TypeTTH, Code: 3, Length: 24, Encoding: EncodingBase32},
	{Name: TypeBTIH32, Code: 4, Length: 20, Encoding: EncodingBase32},
}

var (
	typesByName = make(map[string]HashType, len(hashTypes))
	typesByCode = make(map[uint8]HashType, len(hashTypes))
)

func init() {
	for _, ht := range hashTypes {
		typesByName[ht.Name] = ht
		typesByCode[ht.Code] = ht
	}
}

// LookupName returns the hash type registered under name. Aliases are not
// resolved here; see NormalizeHashType.
func LookupName(name string) (HashType, bool) {
	ht, ok := typesByName[name]
	return ht, ok
}

// LookupCode returns the hash type registered under the wire code.
func LookupCode(code uint8) (HashType, bool) {
	ht, ok := typesByCode[code]
	return ht, ok
}

// HashTypes lists the registry in code order.
func HashTypes() []HashType {
	out := make([]HashType, len(hashTypes))
	copy(out, hashTypes)
	return out
}

// NormalizeHashType maps URN vocabulary onto registry names.
func NormalizeHashType(name string) string {
	if name == TigerTreeAlias {
		return TypeTTH
	}

	return name
}

// resolveBTIH retypes a btih hash that is not hex as the legacy base32
// variant.
func resolveBTIH(name, hash string) string {
	if name == TypeBTIH && !isHex(hash) {
		return TypeBTIH32
	}

	return name
}

func isHex(s string) bool {
	for _, c := range strings.ToUpper(s) {
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}

	return true
}
