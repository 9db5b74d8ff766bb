package schema

// Validate checks that data holds a value of the right kind for every port in defs.
// Returns an error with all validation failures found.
func Validate(defs []PortDef, data map[string]any) error {
	if len(defs) == 0 {
		return nil
	}

	var errs []error

	for _, def := range defs {
		value, exists := data[def.Name]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    def.Name,
				Reason: "required",
			})
			continue
		}

		if err := validateOne(def, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

// ValidatePartial validates only the keys present in data.
// Keys that do not name a port are reported as errors.
func ValidatePartial(defs []PortDef, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	var errs []error

	for name, value := range data {
		def, ok := find(defs, name)
		if !ok {
			errs = append(errs, &ValidationError{
				Key:    name,
				Reason: "not defined in schema",
			})
			continue
		}
		if err := validateOne(def, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

func validateOne(def PortDef, value any) error {
	t, err := For(def.Kind)
	if err != nil {
		return &ValidationError{Key: def.Name, Reason: err.Error()}
	}
	if _, err := t.Decode(value); err != nil {
		return &ValidationError{Key: def.Name, Reason: err.Error(), Value: value}
	}
	return nil
}
