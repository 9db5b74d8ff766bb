package schema

import (
	"fmt"
	"math"

	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Type defines the contract for port value validation.
// Implementations determine how values are validated against a DataKind
// and how loosely typed values (e.g. decoded JSON) are coerced into it.
type Type interface {
	// Kind returns the DataKind this type validates.
	Kind() domain.DataKind
	// Name returns the human-readable name of the type (e.g., "string", "integer").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Decode converts a loosely typed value into the canonical Go representation.
	Decode(value any) (any, error)
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Kind() domain.DataKind { return domain.KindString }
func (t *StringType) Name() string          { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) Decode(value any) (any, error) {
	if value == nil {
		return "", nil
	}
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Kind() domain.DataKind { return domain.KindBoolean }
func (t *BoolType) Name() string          { return "boolean" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	return nil
}

func (t *BoolType) Decode(value any) (any, error) {
	if value == nil {
		return false, nil
	}
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Kind() domain.DataKind { return domain.KindInteger }
func (t *IntType) Name() string          { return "integer" }

func (t *IntType) Validate(value any) error {
	switch value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected integer, got %T", value)
	}
}

// Decode accepts floats that are whole numbers (from JSON unmarshaling).
func (t *IntType) Decode(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return int64(0), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("expected integer, got float (not a whole number)")
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, fmt.Errorf("expected integer, got %g (out of int64 range)", v)
		}
		return int64(v), nil
	case float32:
		return t.Decode(float64(v))
	case interface{ Int64() (int64, error) }: // json.Number
		return v.Int64()
	}
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return domain.Normalize(value), nil
}

// Vector3Type validates domain.Vector3 values.
type Vector3Type struct{}

func (t *Vector3Type) Kind() domain.DataKind { return domain.KindVector3 }
func (t *Vector3Type) Name() string          { return "vector3" }

func (t *Vector3Type) Validate(value any) error {
	switch value.(type) {
	case domain.Vector3, *domain.Vector3:
		return nil
	default:
		return fmt.Errorf("expected vector3, got %T", value)
	}
}

// Decode accepts a Vector3, a {"x","y","z"} map or a three element list.
func (t *Vector3Type) Decode(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return domain.Vector3{}, nil
	case domain.Vector3, *domain.Vector3:
		return domain.Normalize(v), nil
	case []any:
		if len(v) != 3 {
			return nil, fmt.Errorf("expected vector3 with 3 components, got %d", len(v))
		}
		return decodeVector(map[string]any{"x": v[0], "y": v[1], "z": v[2]})
	case []float64:
		if len(v) != 3 {
			return nil, fmt.Errorf("expected vector3 with 3 components, got %d", len(v))
		}
		return domain.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
	case map[string]any:
		return decodeVector(v)
	default:
		return nil, fmt.Errorf("expected vector3, got %T", value)
	}
}

func decodeVector(raw map[string]any) (domain.Vector3, error) {
	var out domain.Vector3
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(raw); err != nil {
		return out, fmt.Errorf("expected vector3: %w", err)
	}
	return out, nil
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Vector3 creates a vector3 type validator.
func Vector3() Type { return &Vector3Type{} }

// For returns the validator for a port kind.
func For(kind domain.DataKind) (Type, error) {
	switch kind {
	case domain.KindString:
		return String(), nil
	case domain.KindBoolean:
		return Bool(), nil
	case domain.KindInteger:
		return Int(), nil
	case domain.KindVector3:
		return Vector3(), nil
	default:
		return nil, fmt.Errorf("unsupported port kind: %s", kind)
	}
}

// ParseType converts a kind name ("string", "integer", ...) into a Type.
func ParseType(typeStr string) (Type, error) {
	kind, err := domain.ParseKind(typeStr)
	if err != nil {
		return nil, err
	}
	return For(kind)
}

// DecodeValue coerces raw into a value of the given kind.
// The returned error wraps domain.ErrTypeMismatch.
func DecodeValue(kind domain.DataKind, raw any) (any, error) {
	t, err := For(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTypeMismatch, err)
	}
	v, err := t.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTypeMismatch, err)
	}
	return v, nil
}
