// Package iniconf edits the bot's INI config file in place, preserving
// comments, blank lines and key ordering that a generic INI writer would
// discard.
package iniconf

import (
	"fmt"
	"os"
	"strings"
)

// File is a parsed INI config. Edits are applied to the section maps and
// merged back into the original line sequence on Write, so untouched lines
// survive byte for byte.
type File struct {
	path     string
	lines    []string
	trailing bool // original file ended with a newline

	sections map[string]map[string]string
	order    []string            // section order, as read plus additions
	keyOrder map[string][]string // per-section key order
}

// Open reads and parses the config at path.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	f := &File{
		path:     path,
		sections: map[string]map[string]string{},
		keyOrder: map[string][]string{},
	}
	text := string(data)
	f.trailing = strings.HasSuffix(text, "\n")
	f.lines = strings.Split(text, "\n")
	if f.trailing {
		f.lines = f.lines[:len(f.lines)-1]
	}

	current := ""
	for _, line := range f.lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
			current = stripped[1 : len(stripped)-1]
			if _, ok := f.sections[current]; !ok {
				f.sections[current] = map[string]string{}
				f.order = append(f.order, current)
			}
			continue
		}
		if current == "" {
			continue
		}
		if key, value, found := strings.Cut(stripped, "="); found {
			key = strings.TrimSpace(key)
			if _, ok := f.sections[current][key]; !ok {
				f.keyOrder[current] = append(f.keyOrder[current], key)
			}
			f.sections[current][key] = strings.TrimSpace(value)
		}
	}
	return f, nil
}

// Sections returns section names in file order.
func (f *File) Sections() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// HasSection reports whether the section exists.
func (f *File) HasSection(name string) bool {
	_, ok := f.sections[name]
	return ok
}

// Section returns a copy of the raw key/value pairs of a section.
func (f *File) Section(name string) (map[string]string, bool) {
	vals, ok := f.sections[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out, true
}

// Keys returns the keys of a section in file order.
func (f *File) Keys(section string) []string {
	out := make([]string, len(f.keyOrder[section]))
	copy(out, f.keyOrder[section])
	return out
}

// Get returns the raw value for section.key, or def when absent.
func (f *File) Get(section, key, def string) string {
	if vals, ok := f.sections[section]; ok {
		if v, ok := vals[key]; ok {
			return v
		}
	}
	return def
}

// Set stores a raw value, creating the section if needed.
func (f *File) Set(section, key, value string) {
	f.AddSection(section)
	if _, ok := f.sections[section][key]; !ok {
		f.keyOrder[section] = append(f.keyOrder[section], key)
	}
	f.sections[section][key] = value
}

// AddSection registers a new section. Existing sections are untouched. The
// section is emitted at the end of the file on Write.
func (f *File) AddSection(name string) {
	if _, ok := f.sections[name]; ok {
		return
	}
	f.sections[name] = map[string]string{}
	f.order = append(f.order, name)
}

// RemoveSection deletes a section and its lines. Reports whether it existed.
func (f *File) RemoveSection(name string) bool {
	if _, ok := f.sections[name]; !ok {
		return false
	}
	delete(f.sections, name)
	delete(f.keyOrder, name)
	for i, s := range f.order {
		if s == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}

	var kept []string
	inSection := false
	for _, line := range f.lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
			inSection = stripped[1:len(stripped)-1] == name
			if inSection {
				continue
			}
		}
		if !inSection {
			kept = append(kept, line)
		}
	}
	f.lines = kept
	return true
}

// Write merges the current values back into the original lines and rewrites
// the file. Comments, blank lines and unknown keys keep their original text;
// keys added since Open are appended at the end of their section, and whole
// new sections at the end of the file.
func (f *File) Write() error {
	var out []string
	current := ""
	written := map[string]bool{}
	emittedSections := map[string]bool{}

	appendMissing := func(section string) {
		for _, key := range f.keyOrder[section] {
			id := section + "\x00" + key
			if !written[id] {
				out = append(out, key+" = "+f.sections[section][key])
				written[id] = true
			}
		}
	}

	for _, line := range f.lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
			if _, ok := f.sections[current]; ok && current != "" {
				appendMissing(current)
			}
			current = stripped[1 : len(stripped)-1]
			emittedSections[current] = true
			out = append(out, line)
			continue
		}
		if current != "" && strings.Contains(stripped, "=") {
			parts := strings.SplitN(stripped, "=", 2)
			key := strings.TrimSpace(parts[0])
			if vals, ok := f.sections[current]; ok {
				if value, ok := vals[key]; ok {
					if strings.TrimSpace(parts[1]) == value {
						// Value unchanged: keep the original line verbatim.
						out = append(out, line)
					} else {
						indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
						out = append(out, indent+key+" = "+value)
					}
					written[current+"\x00"+key] = true
					continue
				}
			}
			out = append(out, line)
			continue
		}
		out = append(out, line)
	}
	if _, ok := f.sections[current]; ok && current != "" {
		appendMissing(current)
	}

	for _, section := range f.order {
		if emittedSections[section] {
			continue
		}
		out = append(out, "", "["+section+"]")
		appendMissing(section)
	}

	text := strings.Join(out, "\n")
	if f.trailing || len(out) > len(f.lines) {
		text += "\n"
	}
	if err := os.WriteFile(f.path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
