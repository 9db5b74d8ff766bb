package domain

import (
	"fmt"
	"strings"
)

// DataKind is the closed set of payload types a port can carry.
type DataKind int

const (
	// KindVoid marks "no output". It is never a valid port datatype.
	KindVoid DataKind = iota
	KindString
	KindBoolean
	KindInteger
	KindVector3
)

var kindNames = map[DataKind]string{
	KindVoid:    "void",
	KindString:  "string",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindVector3: "vector3",
}

func (k DataKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsPortKind reports whether k may be used as a port datatype.
func (k DataKind) IsPortKind() bool {
	switch k {
	case KindString, KindBoolean, KindInteger, KindVector3:
		return true
	default:
		return false
	}
}

// ParseKind converts a kind name ("string", "boolean", ...) back into a DataKind.
func ParseKind(name string) (DataKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, v := range kindNames {
		if v == n {
			return k, nil
		}
	}
	return KindVoid, fmt.Errorf("unsupported data kind: %q", name)
}

// MarshalText encodes the kind by name.
func (k DataKind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unsupported data kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *DataKind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Zero returns the default manual value for a kind.
// Void has no value and yields nil.
func Zero(k DataKind) any {
	switch k {
	case KindString:
		return ""
	case KindBoolean:
		return false
	case KindInteger:
		return int64(0)
	case KindVector3:
		return Vector3{}
	default:
		return nil
	}
}

// KindOf reports the DataKind of a Go value.
// Any signed integer type counts as KindInteger; see Normalize.
func KindOf(v any) (DataKind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case bool:
		return KindBoolean, true
	case int, int8, int16, int32, int64:
		return KindInteger, true
	case Vector3, *Vector3:
		return KindVector3, true
	default:
		return KindVoid, false
	}
}

// Normalize returns v in the canonical representation of its kind:
// integers become int64 and *Vector3 is dereferenced.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case *Vector3:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}

// Check returns ErrTypeMismatch (wrapped) if v is not a value of kind k.
func Check(k DataKind, v any) error {
	got, ok := KindOf(v)
	if !ok {
		return fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, k, v)
	}
	if got != k {
		return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, k, got)
	}
	return nil
}
