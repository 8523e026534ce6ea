package magnet

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	xtPattern = regexp.MustCompile(`xt=urn:(\w+):(\w+)`)
	dnPattern = regexp.MustCompile(`&dn=([\x20-\x25\x27-\x7e]+)`)
)

// URI holds the parts of a magnet link the codec cares about.
type URI struct {
	HashType string
	Hash     string
	Filename string
}

func (u URI) String() string {
	return RenderURI(u.HashType, u.Hash, u.Filename)
}

// Record encodes the link's hash.
func (u URI) Record() (Record, error) {
	return Encode(u.Hash, u.HashType)
}

// ParseURI extracts the first xt hash and the dn filename from a magnet
// link. Matching is deliberately loose: anything containing
// "xt=urn:<type>:<hash>" is accepted, extra parameters are ignored and a
// missing dn yields an empty filename.
func ParseURI(uri string) (URI, error) {
	s := strings.ReplaceAll(uri, TigerTreeAlias, TypeTTH)

	m := xtPattern.FindStringSubmatch(s)
	if m == nil {
		return URI{}, fmt.Errorf("%w: no xt=urn: clause", ErrMalformedURI)
	}

	name, hash := m[1], m[2]
	if name == "" || hash == "" {
		return URI{}, fmt.Errorf("%w: empty hash type or hash", ErrMalformedURI)
	}

	var filename string
	if dn := dnPattern.FindStringSubmatch(s); dn != nil {
		filename = dn[1]
	}

	name = resolveBTIH(name, hash)

	ht, ok := LookupName(name)
	if !ok {
		return URI{}, fmt.Errorf("%w: unsupported hash type %q", ErrMalformedURI, name)
	}

	if ht.Encoding == EncodingBase32 {
		hash = padBase32(hash)
	}

	return URI{HashType: name, Hash: hash, Filename: filename}, nil
}

// RenderURI builds a magnet link. Base32 hashes are uppercased, tth is
// written as tree:tiger and btih-32 as plain btih.
func RenderURI(hashType, hash, filename string) string {
	if ht, ok := LookupName(hashType); ok && ht.Encoding == EncodingBase32 {
		hash = strings.ToUpper(hash)
	}

	switch hashType {
	case TypeTTH:
		hashType = TigerTreeAlias
	case TypeBTIH32:
		hashType = TypeBTIH
	}

	return "magnet:?xt=urn:" + hashType + ":" + hash + "&dn=" + filename
}

// RecordToURI decodes a hex record and renders it with filename.
func RecordToURI(recordHex, filename string) (string, error) {
	hashType, hash, err := Decode(recordHex)
	if err != nil {
		return "", err
	}

	return RenderURI(hashType, hash, filename), nil
}

// padBase32 restores the padding magnet links usually strip, up to a
// multiple of 4 characters.
func padBase32(s string) string {
	if r := len(s) % 4; r != 0 {
		s += strings.Repeat("=", 4-r)
	}

	return s
}
