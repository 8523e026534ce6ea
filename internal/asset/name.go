// Package asset models the unique asset names magnet records are published
// under. A unique asset is written MAIN/SUB#TAG, where MAIN/SUB is the
// parent asset and TAG carries the link's display name.
package asset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	SubDelimiter    = "/"
	UniqueDelimiter = "#"

	minMainLength = 3
	maxPartLength = 30
)

var ErrInvalidName = errors.New("invalid asset name")

var (
	partPattern = regexp.MustCompile(`^[A-Z0-9._]+$`)
	tagPattern  = regexp.MustCompile(`^[-A-Za-z0-9@$%&*()\[\]{}_.?:]+$`)
)

// Name is a unique asset name.
type Name struct {
	Main string
	Sub  string
	Tag  string
}

// New builds a name from its parts, uppercasing each of them.
func New(main, sub, tag string) (Name, error) {
	n := Name{
		Main: strings.ToUpper(main),
		Sub:  strings.ToUpper(sub),
		Tag:  strings.ToUpper(tag),
	}

	if err := n.Validate(); err != nil {
		return Name{}, err
	}

	return n, nil
}

// Parse splits MAIN/SUB#TAG.
func Parse(full string) (Name, error) {
	parent, tag, ok := strings.Cut(full, UniqueDelimiter)
	if !ok {
		return Name{}, fmt.Errorf("%w: %q has no %s tag", ErrInvalidName, full, UniqueDelimiter)
	}

	main, sub, err := ParseParent(parent)
	if err != nil {
		return Name{}, err
	}

	n := Name{Main: main, Sub: sub, Tag: tag}
	if err := validateTag(n.Tag); err != nil {
		return Name{}, err
	}

	return n, nil
}

// ParseParent splits MAIN/SUB.
func ParseParent(parent string) (main, sub string, err error) {
	main, sub, ok := strings.Cut(parent, SubDelimiter)
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not MAIN%sSUB", ErrInvalidName, parent, SubDelimiter)
	}

	if err := validatePart("main", main, minMainLength); err != nil {
		return "", "", err
	}

	if err := validatePart("sub", sub, 1); err != nil {
		return "", "", err
	}

	return main, sub, nil
}

// TagOf returns the text after the first '#' of a full asset name, or ""
// when there is none.
func TagOf(full string) string {
	_, tag, _ := strings.Cut(full, UniqueDelimiter)
	return tag
}

func (n Name) Validate() error {
	if err := validatePart("main", n.Main, minMainLength); err != nil {
		return err
	}

	if err := validatePart("sub", n.Sub, 1); err != nil {
		return err
	}

	return validateTag(n.Tag)
}

// Parent returns MAIN/SUB.
func (n Name) Parent() string {
	return n.Main + SubDelimiter + n.Sub
}

func (n Name) String() string {
	return n.Parent() + UniqueDelimiter + n.Tag
}

func validatePart(kind, s string, minLen int) error {
	if len(s) < minLen || len(s) > maxPartLength {
		return fmt.Errorf("%w: %s name %q must be %d to %d characters", ErrInvalidName, kind, s, minLen, maxPartLength)
	}

	if !partPattern.MatchString(s) {
		return fmt.Errorf("%w: %s name %q may only contain A-Z, 0-9, '.' and '_'", ErrInvalidName, kind, s)
	}

	if isPunct(s[0]) || isPunct(s[len(s)-1]) {
		return fmt.Errorf("%w: %s name %q must not start or end with punctuation", ErrInvalidName, kind, s)
	}

	for i := 1; i < len(s); i++ {
		if isPunct(s[i]) && isPunct(s[i-1]) {
			return fmt.Errorf("%w: %s name %q has consecutive punctuation", ErrInvalidName, kind, s)
		}
	}

	return nil
}

func validateTag(tag string) error {
	if !tagPattern.MatchString(tag) {
		return fmt.Errorf("%w: tag %q is empty or has characters outside A-Z a-z 0-9 -@$%%&*()[]{}_.?:", ErrInvalidName, tag)
	}

	return nil
}

func isPunct(c byte) bool {
	return c == '.' || c == '_'
}
