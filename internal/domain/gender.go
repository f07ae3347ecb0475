package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Gender is a single identity value. Stored as disjoint bits so a user can
// carry several values at once; zero means unset.
type Gender uint32

const (
	GenderMale      Gender = 1 << 0
	GenderFemale    Gender = 1 << 1
	GenderNonBinary Gender = 1 << 2
)

var genderNames = map[Gender]string{
	GenderMale:      "male",
	GenderFemale:    "female",
	GenderNonBinary: "non_binary",
}

func (g Gender) String() string {
	if s, ok := genderNames[g]; ok {
		return s
	}
	return "unset"
}

// ParseGender maps an API string to a Gender bit.
func ParseGender(s string) (Gender, error) {
	for g, name := range genderNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gender %q", s)
}

// GenderSet is a tagged set of Gender values. It only becomes an integer
// bitmask at the storage boundary (Value/Scan).
type GenderSet uint32

func NewGenderSet(values ...Gender) GenderSet {
	var s GenderSet
	for _, v := range values {
		s |= GenderSet(v)
	}
	return s
}

func (s GenderSet) Has(g Gender) bool { return uint32(s)&uint32(g) != 0 }

// Intersects reports whether the two sets share any value. An empty (unset)
// set never intersects anything.
func (s GenderSet) Intersects(other GenderSet) bool {
	return uint32(s)&uint32(other) != 0
}

func (s GenderSet) IsEmpty() bool { return s == 0 }

func (s GenderSet) Values() []Gender {
	var out []Gender
	for g := range genderNames {
		if s.Has(g) {
			out = append(out, g)
		}
	}
	return out
}

func (s GenderSet) Strings() []string {
	var out []string
	for _, g := range []Gender{GenderMale, GenderFemale, GenderNonBinary} {
		if s.Has(g) {
			out = append(out, g.String())
		}
	}
	return out
}

// ParseGenderSet builds a set from API strings.
func ParseGenderSet(values []string) (GenderSet, error) {
	var s GenderSet
	for _, v := range values {
		g, err := ParseGender(v)
		if err != nil {
			return 0, err
		}
		s |= GenderSet(g)
	}
	return s, nil
}

// Value implements driver.Valuer; the set is persisted as an integer bitmask.
func (s GenderSet) Value() (driver.Value, error) {
	return int64(s), nil
}

// Scan implements sql.Scanner.
func (s *GenderSet) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*s = GenderSet(v)
		return nil
	case uint64:
		*s = GenderSet(v)
		return nil
	case nil:
		*s = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into GenderSet", src)
	}
}
