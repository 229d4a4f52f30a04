package iniconf

import "fmt"

// MaxInterfaces is the highest supported mesh interface number.
const MaxInterfaces = 9

// InterfaceSection maps an interface number to its section name: the
// primary interface lives in [interface], the rest in [interfaceN].
func InterfaceSection(num int) string {
	if num == 1 {
		return "interface"
	}
	return fmt.Sprintf("interface%d", num)
}

// InterfaceFieldsFor returns the editable field specs for an interface.
func InterfaceFieldsFor(num int) map[string]FieldSpec {
	if num == 1 {
		return PrimaryInterfaceFields
	}
	return InterfaceFields
}

// Interfaces returns the typed config of every configured interface, keyed
// by interface number. Absent keys fall back to the field default.
func Interfaces(f *File) map[int]map[string]any {
	out := map[int]map[string]any{}
	for num := 1; num <= MaxInterfaces; num++ {
		section := InterfaceSection(num)
		if !f.HasSection(section) {
			continue
		}
		cfg := map[string]any{}
		for key, spec := range InterfaceFieldsFor(num) {
			raw := f.Get(section, key, "")
			if raw != "" {
				cfg[key] = ParseValue(raw, spec.Type)
			} else {
				cfg[key] = spec.Default
			}
		}
		out[num] = cfg
	}
	return out
}

// NextFreeInterface returns the first unconfigured secondary slot (2..9),
// or 0 when all slots are taken.
func NextFreeInterface(f *File) int {
	for num := 2; num <= MaxInterfaces; num++ {
		if !f.HasSection(InterfaceSection(num)) {
			return num
		}
	}
	return 0
}
