package logic

import "strings"

// Truth is a three-valued truth value.
//
// The zero value is Unknown so that an absent assignment entry and an
// uninitialised Truth mean the same thing: no opinion. Code must never treat
// Unknown as False.
type Truth int8

const (
	// Unknown means the value is undetermined (open world).
	Unknown Truth = iota
	// False is the non-designated known value.
	False
	// True is the designated value.
	True
)

// FromBool converts a Go bool into a known Truth.
func FromBool(b bool) Truth {
	if b {
		return True
	}
	return False
}

// TruthOf is a tolerant cast from a raw evaluation result.
//
// Accepts bool, Truth, *bool and the strings "true"/"false"/"unknown"
// (case-insensitive). Anything else, including nil, is Unknown.
func TruthOf(v any) Truth {
	switch val := v.(type) {
	case Truth:
		return val
	case bool:
		return FromBool(val)
	case *bool:
		if val == nil {
			return Unknown
		}
		return FromBool(*val)
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			return True
		case "false":
			return False
		}
	}
	return Unknown
}

// IsDesignated reports whether t counts as success.
func (t Truth) IsDesignated() bool {
	return t == True
}

// IsKnown reports whether t is True or False.
func (t Truth) IsKnown() bool {
	return t == True || t == False
}

// Negate flips known values; Unknown stays Unknown.
func (t Truth) Negate() Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// Bool returns the Go bool for a known value. ok is false for Unknown.
func (t Truth) Bool() (value, ok bool) {
	switch t {
	case True:
		return true, true
	case False:
		return false, true
	default:
		return false, false
	}
}

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}
