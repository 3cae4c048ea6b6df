package script

import (
	"math"
	"strconv"
)

// field is one row of a stage substitution table: the template name, the
// formatted value, and whether the value is emitted at all.
type field struct {
	name    string
	value   string
	present bool
}

func applyFields(script string, fields []field) string {
	for _, f := range fields {
		script = Apply(script, f.name, f.value, f.present)
	}
	return script
}

func gate(name string, on bool) field {
	return field{name: name, present: on}
}

func intAlways(name string, value int) field {
	return field{name: name, value: strconv.Itoa(value), present: true}
}

func intOptional(name string, value *int) field {
	if value == nil {
		return field{name: name}
	}
	return intAlways(name, *value)
}

func intUnlessDefault(name string, value, def int) field {
	f := intAlways(name, value)
	f.present = value != def
	return f
}

func floatAlways(name string, value float64) field {
	return field{name: name, value: FormatFloat(value), present: true}
}

func floatOptional(name string, value *float64) field {
	if value == nil {
		return field{name: name}
	}
	return floatAlways(name, *value)
}

func floatUnlessDefault(name string, value, def float64) field {
	f := floatAlways(name, value)
	f.present = value != def
	return f
}

// floatUnlessNear treats values within tolerance of def as the default.
func floatUnlessNear(name string, value, def, tolerance float64) field {
	f := floatAlways(name, value)
	f.present = math.Abs(value-def) > tolerance
	return f
}

func boolAlways(name string, value bool) field {
	return field{name: name, value: FormatBool(value), present: true}
}

func boolOptional(name string, value *bool) field {
	if value == nil {
		return field{name: name}
	}
	return boolAlways(name, *value)
}

func boolUnlessDefault(name string, value, def bool) field {
	f := boolAlways(name, value)
	f.present = value != def
	return f
}

func stringAlways(name, value string) field {
	return field{name: name, value: Escape(value), present: true}
}

func stringOptional(name string, value *string) field {
	if value == nil {
		return field{name: name}
	}
	return stringAlways(name, *value)
}

func stringUnlessDefault(name, value, def string) field {
	f := stringAlways(name, value)
	f.present = value != def
	return f
}

// raw inserts value verbatim; used for identifiers such as function names.
func raw(name, value string) field {
	return field{name: name, value: value, present: true}
}
