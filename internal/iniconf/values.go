package iniconf

import (
	"fmt"
	"strconv"
	"strings"
)

// Field types understood by the schema.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeList    = "list"
	TypeEnum    = "enum"
)

// ParseValue converts a raw INI string into the JSON-facing value for its
// declared field type. Unparsable numbers become zero rather than errors;
// the config file is hand-edited and must degrade gracefully.
func ParseValue(raw, fieldType string) any {
	switch fieldType {
	case TypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case TypeInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0
		}
		return n
	case TypeFloat:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0.0
		}
		return x
	case TypeList:
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if items == nil {
			items = []string{}
		}
		return items
	default:
		return raw
	}
}

// FormatValue renders a JSON-facing value back into the INI string form for
// its field type. Booleans use the Python spelling the bot expects.
func FormatValue(value any, fieldType string) string {
	switch fieldType {
	case TypeBoolean:
		if truthy(value) {
			return "True"
		}
		return "False"
	case TypeList:
		switch v := value.(type) {
		case []string:
			return strings.Join(v, ",")
		case []any:
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = stringify(item)
			}
			return strings.Join(parts, ",")
		}
		return stringify(value)
	default:
		return stringify(value)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return value != nil
	}
}

// stringify avoids the "%!s" noise fmt would give for JSON numbers: float64
// values that are whole render without a decimal point.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", v)
	}
}
