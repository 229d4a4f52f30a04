package iniconf

import "fmt"

// FieldSpec declares the type, default and constraints of one config key.
type FieldSpec struct {
	Type    string   `json:"type"`
	Default any      `json:"default,omitempty"`
	Options []string `json:"options,omitempty"`
	Label   string   `json:"label,omitempty"`
}

// SectionSpec declares the known fields of one config section.
type SectionSpec struct {
	Label  string               `json:"label,omitempty"`
	Fields map[string]FieldSpec `json:"fields"`
}

// SectionOrder is the preferred display order for config sections.
var SectionOrder = []string{
	"general", "interface", "location", "bbs", "scheduler",
	"messagingSettings", "emergencyHandler", "sentry",
}

// Schema describes the meshbot config sections the panel can edit with
// types. Unknown sections and keys still round-trip as strings; the schema
// only improves typing and validation for the keys it knows.
var Schema = map[string]SectionSpec{
	"general": {Label: "General", Fields: map[string]FieldSpec{
		"respond_by_dm_only": {Type: TypeBoolean, Default: true},
		"defaultChannel":     {Type: TypeInteger, Default: 0},
		"motd":               {Type: TypeString, Default: "Thanks for using MeshBOT"},
		"welcome_message":    {Type: TypeString, Default: ""},
		"zuluTime":           {Type: TypeBoolean, Default: false},
		"urlTimeout":         {Type: TypeInteger, Default: 10},
		"autoPingInChannel":  {Type: TypeBoolean, Default: false},
		"enableCmdHistory":   {Type: TypeBoolean, Default: true},
		"ignoreChannels":     {Type: TypeList, Default: []string{}},
	}},
	"location": {Label: "Location", Fields: map[string]FieldSpec{
		"enabled":   {Type: TypeBoolean, Default: true},
		"lat":       {Type: TypeFloat, Default: 48.50},
		"lon":       {Type: TypeFloat, Default: -123.0},
		"useMetric": {Type: TypeBoolean, Default: false},
	}},
	"bbs": {Label: "BBS", Fields: map[string]FieldSpec{
		"enabled":           {Type: TypeBoolean, Default: false},
		"bbsdb":             {Type: TypeString, Default: "data/bbsdb.pkl"},
		"bbslink_enabled":   {Type: TypeBoolean, Default: false},
		"bbslink_whitelist": {Type: TypeList, Default: []string{}},
	}},
	"scheduler": {Label: "Scheduler", Fields: map[string]FieldSpec{
		"enabled":  {Type: TypeBoolean, Default: false},
		"interval": {Type: TypeString, Default: "day"},
		"time":     {Type: TypeString, Default: "09:00"},
		"value":    {Type: TypeString, Default: ""},
		"channel":  {Type: TypeInteger, Default: 0},
		"message":  {Type: TypeString, Default: ""},
	}},
	"messagingSettings": {Label: "Messaging", Fields: map[string]FieldSpec{
		"responseDelay":      {Type: TypeFloat, Default: 0.7},
		"splitDelay":         {Type: TypeFloat, Default: 0},
		"MESSAGE_CHUNK_SIZE": {Type: TypeInteger, Default: 160},
		"wantAck":            {Type: TypeBoolean, Default: false},
		"maxBuffer":          {Type: TypeInteger, Default: 220},
	}},
	"emergencyHandler": {Label: "Emergency", Fields: map[string]FieldSpec{
		"enabled":         {Type: TypeBoolean, Default: false},
		"alert_channel":   {Type: TypeInteger, Default: 2},
		"alert_interface": {Type: TypeInteger, Default: 1},
	}},
	"sentry": {Label: "Sentry", Fields: map[string]FieldSpec{
		"SentryEnabled":    {Type: TypeBoolean, Default: false},
		"SentryRadius":     {Type: TypeInteger, Default: 100},
		"SentryChannel":    {Type: TypeInteger, Default: 2},
		"sentryIgnoreList": {Type: TypeList, Default: []string{}},
	}},
}

// InterfaceFields are the editable keys of secondary interface sections.
var InterfaceFields = map[string]FieldSpec{
	"enabled":  {Type: TypeBoolean, Default: false},
	"type":     {Type: TypeEnum, Default: "serial", Options: []string{"serial", "tcp", "ble"}},
	"port":     {Type: TypeString, Default: ""},
	"hostname": {Type: TypeString, Default: ""},
	"mac":      {Type: TypeString, Default: ""},
}

// PrimaryInterfaceFields are the editable keys of the primary interface;
// the primary is always enabled so the flag is absent.
var PrimaryInterfaceFields = map[string]FieldSpec{
	"type":     {Type: TypeEnum, Default: "serial", Options: []string{"serial", "tcp", "ble"}},
	"port":     {Type: TypeString, Default: ""},
	"hostname": {Type: TypeString, Default: ""},
	"mac":      {Type: TypeString, Default: ""},
}

// LookupField returns the schema spec for section.key, defaulting to a
// plain string field for unknown keys.
func LookupField(section, key string) FieldSpec {
	if sec, ok := Schema[section]; ok {
		if spec, ok := sec.Fields[key]; ok {
			return spec
		}
	}
	return FieldSpec{Type: TypeString}
}

// Validate checks a proposed config document against the schema. Unknown
// sections and keys are warnings; type mismatches are errors.
func Validate(cfg map[string]map[string]any) (errs, warnings []string) {
	for section, fields := range cfg {
		spec, ok := Schema[section]
		if !ok {
			warnings = append(warnings, "Unknown section: "+section)
			continue
		}
		for key, value := range fields {
			fieldSpec, ok := spec.Fields[key]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("Unknown key: %s.%s", section, key))
				continue
			}
			switch fieldSpec.Type {
			case TypeInteger:
				switch v := value.(type) {
				case float64:
					if v != float64(int64(v)) {
						errs = append(errs, fmt.Sprintf("%s.%s: Expected integer, got %v", section, key, value))
					}
				case int:
				default:
					errs = append(errs, fmt.Sprintf("%s.%s: Expected integer, got %T", section, key, value))
				}
			case TypeFloat:
				switch value.(type) {
				case float64, int:
				default:
					errs = append(errs, fmt.Sprintf("%s.%s: Expected float, got %T", section, key, value))
				}
			case TypeBoolean:
				if _, ok := value.(bool); !ok {
					switch fmt.Sprintf("%v", value) {
					case "true", "false", "True", "False", "1", "0", "yes", "no":
					default:
						errs = append(errs, fmt.Sprintf("%s.%s: Expected boolean, got %v", section, key, value))
					}
				}
			case TypeEnum:
				found := false
				for _, opt := range fieldSpec.Options {
					if fmt.Sprintf("%v", value) == opt {
						found = true
						break
					}
				}
				if !found {
					errs = append(errs, fmt.Sprintf("%s.%s: Value '%v' not in allowed options: %v", section, key, value, fieldSpec.Options))
				}
			}
		}
	}
	return errs, warnings
}
