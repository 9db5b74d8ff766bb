package schema

import (
	"testing"

	"github.com/aretw0/nodeweave/pkg/domain"
)

var jointDefs = []PortDef{
	In("name", domain.KindString),
	In("position", domain.KindVector3),
	In("count", domain.KindInteger),
}

func TestValidate_Success(t *testing.T) {
	data := map[string]any{
		"name":     "root",
		"position": map[string]any{"x": 0.0, "y": 1.0, "z": 0.0},
		"count":    float64(3),
	}

	if err := Validate(jointDefs, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingField(t *testing.T) {
	data := map[string]any{
		"name":     "root",
		"position": domain.Vector3{},
	}

	err := Validate(jointDefs, data)
	if err == nil {
		t.Fatal("Validate() should return error for missing field")
	}

	errs := ValidationErrors(err)
	if len(errs) != 1 {
		t.Fatalf("Validate() = %d errors, want 1", len(errs))
	}

	validErr, ok := errs[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", errs[0])
	}
	if validErr.Key != "count" {
		t.Errorf("ValidationError.Key = %q, want %q", validErr.Key, "count")
	}
	if validErr.Reason != "required" {
		t.Errorf("ValidationError.Reason = %q, want %q", validErr.Reason, "required")
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	data := map[string]any{
		"name":     42,
		"position": "here",
		"count":    1.5,
	}

	err := Validate(jointDefs, data)
	if got := len(ValidationErrors(err)); got != 3 {
		t.Errorf("Validate() = %d errors, want 3 (%v)", got, err)
	}
}

func TestValidatePartial(t *testing.T) {
	if err := ValidatePartial(jointDefs, map[string]any{"name": "hip"}); err != nil {
		t.Errorf("ValidatePartial() error = %v, want nil", err)
	}

	err := ValidatePartial(jointDefs, map[string]any{"unknown": 1})
	if err == nil {
		t.Fatal("ValidatePartial() should reject undeclared ports")
	}
}

func TestSignature_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sig     Signature
		wantErr int
	}{
		{
			name: "valid",
			sig: Signature{
				Inputs:  []PortDef{In("a", domain.KindInteger), In("b", domain.KindInteger)},
				Outputs: []PortDef{Out("sum", domain.KindInteger)},
			},
		},
		{
			name: "no ports",
			sig:  Signature{},
		},
		{
			name:    "void output",
			sig:     Signature{Outputs: []PortDef{Out("out", domain.KindVoid)}},
			wantErr: 1,
		},
		{
			name:    "duplicate and empty names",
			sig:     Signature{Inputs: []PortDef{In("a", domain.KindString), In("a", domain.KindString), In("", domain.KindString)}},
			wantErr: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sig.Validate()
			if got := len(ValidationErrors(err)); got != tt.wantErr {
				t.Errorf("Validate() = %d errors, want %d (%v)", got, tt.wantErr, err)
			}
		})
	}
}
