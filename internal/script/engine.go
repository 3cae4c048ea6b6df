package script

import (
	"math"
	"strconv"
	"strings"
)

func startTag(name string) string    { return "{{#" + name + "}}" }
func endTag(name string) string      { return "{{/" + name + "}}" }
func placeholder(name string) string { return "{{" + name + "}}" }

// Apply resolves every block and placeholder for name. With present set the
// block markers are stripped and each placeholder becomes value; otherwise
// every block for name is cut out.
func Apply(script, name, value string, present bool) string {
	if !present {
		return RemoveBlock(script, name)
	}
	script = strings.ReplaceAll(script, startTag(name), "")
	script = strings.ReplaceAll(script, endTag(name), "")
	return strings.ReplaceAll(script, placeholder(name), value)
}

// RemoveBlock deletes each {{#name}}...{{/name}} region together with one
// newline that directly follows the end marker. A start marker with no
// matching end marker is left in place.
func RemoveBlock(script, name string) string {
	start, end := startTag(name), endTag(name)
	for {
		from := strings.Index(script, start)
		if from < 0 {
			return script
		}
		offset := strings.Index(script[from:], end)
		if offset < 0 {
			return script
		}
		to := from + offset + len(end)
		if to < len(script) && script[to] == '\n' {
			to++
		}
		script = script[:from] + script[to:]
	}
}

// Toggle keeps or removes a gate block that has no placeholder of its own.
func Toggle(script, name string, on bool) string {
	return Apply(script, name, "", on)
}

// Select keeps the block named chosen and removes every other alternative.
func Select(script, chosen string, alternatives ...string) string {
	for _, alt := range alternatives {
		script = Toggle(script, alt, alt == chosen)
	}
	return script
}

// ApplyInt renders an optional integer.
func ApplyInt(script, name string, value *int) string {
	if value == nil {
		return RemoveBlock(script, name)
	}
	return Apply(script, name, strconv.Itoa(*value), true)
}

// ApplyFloat renders an optional floating point value.
func ApplyFloat(script, name string, value *float64) string {
	if value == nil {
		return RemoveBlock(script, name)
	}
	return Apply(script, name, FormatFloat(*value), true)
}

// ApplyBool renders an optional boolean.
func ApplyBool(script, name string, value *bool) string {
	if value == nil {
		return RemoveBlock(script, name)
	}
	return Apply(script, name, FormatBool(*value), true)
}

// ApplyString renders an optional string with backslashes escaped.
func ApplyString(script, name string, value *string) string {
	if value == nil {
		return RemoveBlock(script, name)
	}
	return Apply(script, name, Escape(*value), true)
}

// FormatFloat renders integral values with one decimal ("2.0") and other
// values with up to four decimals, trailing zeros trimmed.
func FormatFloat(value float64) string {
	if value == math.Trunc(value) {
		return strconv.FormatFloat(value, 'f', 1, 64)
	}
	formatted := strconv.FormatFloat(value, 'f', 4, 64)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimRight(formatted, ".")
}

// FormatBool renders Python boolean literals.
func FormatBool(value bool) string {
	if value {
		return "True"
	}
	return "False"
}

// Escape prepares a value for a double-quoted Python string literal.
// Backslashes are doubled so Windows paths survive. Double quotes are
// escaped as well, which goes beyond backslash doubling, so a path or
// string containing `"` cannot terminate the literal early.
func Escape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}
