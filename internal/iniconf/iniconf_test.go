package iniconf

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleConfig = `# meshbot configuration
# edit with care

[general]
respond_by_dm_only = True
defaultChannel = 0
motd = Thanks for using MeshBOT

[interface]
type = serial
# leave empty for auto-detect
port =

[bbs]
enabled = False
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestOpenParsesSectionsAndKeys(t *testing.T) {
	f, err := Open(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := []string{"general", "interface", "bbs"}
	if got := f.Sections(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Sections() = %v, want %v", got, want)
	}
	if got := f.Get("general", "motd", ""); got != "Thanks for using MeshBOT" {
		t.Errorf("motd = %q", got)
	}
	if got := f.Get("interface", "port", "missing"); got != "" {
		t.Errorf("port = %q, want empty", got)
	}
	if got := f.Get("general", "nope", "fallback"); got != "fallback" {
		t.Errorf("default = %q", got)
	}
	if got := f.Keys("general"); !reflect.DeepEqual(got, []string{"respond_by_dm_only", "defaultChannel", "motd"}) {
		t.Errorf("Keys = %v", got)
	}
}

func TestWritePreservesCommentsAndUntouchedLines(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	f.Set("bbs", "enabled", "True")
	if err := f.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"# meshbot configuration",
		"# edit with care",
		"# leave empty for auto-detect",
		"motd = Thanks for using MeshBOT",
		"enabled = True",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("written config lost %q", want)
		}
	}
	if strings.Contains(text, "enabled = False") {
		t.Error("stale value survived the write")
	}
	if !strings.HasSuffix(text, "\n") {
		t.Error("trailing newline lost")
	}
}

func TestWriteRoundTripIsByteStable(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := f.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != sampleConfig {
		t.Errorf("no-op write changed the file:\n%s", data)
	}
}

func TestSetNewKeyAppendsToSection(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, _ := Open(path)
	f.Set("general", "zuluTime", "False")
	if err := f.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	text := string(data)
	genIdx := strings.Index(text, "[general]")
	ifaceIdx := strings.Index(text, "[interface]")
	keyIdx := strings.Index(text, "zuluTime = False")
	if keyIdx < genIdx || keyIdx > ifaceIdx {
		t.Errorf("new key not inside [general]: gen=%d key=%d iface=%d", genIdx, keyIdx, ifaceIdx)
	}
}

func TestAddSectionEmittedAtEnd(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, _ := Open(path)
	f.AddSection("sentry")
	f.Set("sentry", "SentryEnabled", "True")
	if err := f.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	text := string(data)
	if !strings.Contains(text, "[sentry]\nSentryEnabled = True") {
		t.Errorf("new section missing:\n%s", text)
	}
	if strings.Index(text, "[sentry]") < strings.Index(text, "[bbs]") {
		t.Error("new section not at end of file")
	}
}

func TestRemoveSection(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, _ := Open(path)
	if !f.RemoveSection("interface") {
		t.Fatal("RemoveSection reported missing section")
	}
	if f.RemoveSection("interface") {
		t.Fatal("second RemoveSection should report false")
	}
	if err := f.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	text := string(data)
	if strings.Contains(text, "[interface]") || strings.Contains(text, "type = serial") {
		t.Errorf("removed section still present:\n%s", text)
	}
	if !strings.Contains(text, "[bbs]") {
		t.Error("unrelated section lost")
	}
}

func TestParseValue(t *testing.T) {
	if v := ParseValue("True", TypeBoolean); v != true {
		t.Errorf("boolean True = %v", v)
	}
	if v := ParseValue("no", TypeBoolean); v != false {
		t.Errorf("boolean no = %v", v)
	}
	if v := ParseValue("42", TypeInteger); v != 42 {
		t.Errorf("integer = %v", v)
	}
	if v := ParseValue("junk", TypeInteger); v != 0 {
		t.Errorf("bad integer = %v", v)
	}
	if v := ParseValue("48.5", TypeFloat); v != 48.5 {
		t.Errorf("float = %v", v)
	}
	if v := ParseValue("a, b ,c", TypeList); !reflect.DeepEqual(v, []string{"a", "b", "c"}) {
		t.Errorf("list = %v", v)
	}
	if v := ParseValue("", TypeList); !reflect.DeepEqual(v, []string{}) {
		t.Errorf("empty list = %v", v)
	}
	if v := ParseValue("plain", TypeString); v != "plain" {
		t.Errorf("string = %v", v)
	}
}

func TestFormatValue(t *testing.T) {
	if s := FormatValue(true, TypeBoolean); s != "True" {
		t.Errorf("bool = %q", s)
	}
	if s := FormatValue(false, TypeBoolean); s != "False" {
		t.Errorf("bool = %q", s)
	}
	// JSON numbers arrive as float64; whole values must not grow a decimal.
	if s := FormatValue(float64(160), TypeInteger); s != "160" {
		t.Errorf("whole float = %q", s)
	}
	if s := FormatValue(0.7, TypeFloat); s != "0.7" {
		t.Errorf("float = %q", s)
	}
	if s := FormatValue([]any{"a", "b"}, TypeList); s != "a,b" {
		t.Errorf("list = %q", s)
	}
}

func TestValidate(t *testing.T) {
	errs, warnings := Validate(map[string]map[string]any{
		"general": {
			"defaultChannel": float64(3),
			"motd":           "hello",
			"mysteryKey":     "x",
		},
		"mystery": {"k": "v"},
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want unknown key and unknown section", warnings)
	}

	errs, _ = Validate(map[string]map[string]any{
		"general": {"defaultChannel": float64(3.5)},
	})
	if len(errs) != 1 {
		t.Fatalf("fractional integer accepted: %v", errs)
	}

	errs, _ = Validate(map[string]map[string]any{
		"general": {"respond_by_dm_only": "maybe"},
	})
	if len(errs) != 1 {
		t.Fatalf("bad boolean accepted: %v", errs)
	}
}

func TestInterfaceHelpers(t *testing.T) {
	if s := InterfaceSection(1); s != "interface" {
		t.Errorf("primary section = %q", s)
	}
	if s := InterfaceSection(3); s != "interface3" {
		t.Errorf("secondary section = %q", s)
	}

	path := writeConfig(t, sampleConfig)
	f, _ := Open(path)
	ifaces := Interfaces(f)
	if len(ifaces) != 1 {
		t.Fatalf("interfaces = %v", ifaces)
	}
	if ifaces[1]["type"] != "serial" {
		t.Errorf("primary type = %v", ifaces[1]["type"])
	}
	if n := NextFreeInterface(f); n != 2 {
		t.Errorf("next free = %d, want 2", n)
	}
	for i := 2; i <= MaxInterfaces; i++ {
		f.AddSection(InterfaceSection(i))
	}
	if n := NextFreeInterface(f); n != 0 {
		t.Errorf("next free = %d, want 0 when full", n)
	}
}

func TestBackupNamesNeverCollide(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.ini")
	backupDir := filepath.Join(dir, "backups")
	if err := os.WriteFile(cfgPath, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// Back-to-back backups land in the same second; each must still get its
	// own file.
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := Backup(cfgPath, backupDir)
		if err != nil {
			t.Fatalf("Backup: %v", err)
		}
		if seen[path] {
			t.Fatalf("backup name reused: %q", path)
		}
		seen[path] = true
	}
	backups, err := ListBackups(backupDir)
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("backups = %d, want 3", len(backups))
	}
}

func TestRestoreWithinSameSecondKeepsBackupIntact(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.ini")
	backupDir := filepath.Join(dir, "backups")
	if err := os.WriteFile(cfgPath, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	backup, err := Backup(cfgPath, backupDir)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte("[general]\nmotd = changed\n"), 0o644); err != nil {
		t.Fatalf("overwrite config: %v", err)
	}
	// Restore immediately: the pre-restore safety copy must not overwrite
	// the backup being restored.
	if err := Restore(cfgPath, backupDir, filepath.Base(backup)); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != sampleConfig {
		t.Fatal("restore served back the modified config")
	}
	saved, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(saved) != sampleConfig {
		t.Fatal("restore overwrote the stored backup")
	}
}

func TestBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.ini")
	backupDir := filepath.Join(dir, "backups")
	if err := os.WriteFile(cfgPath, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	backup, err := Backup(cfgPath, backupDir)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if filepath.Dir(backup) != backupDir {
		t.Errorf("backup landed in %q", backup)
	}

	backups, err := ListBackups(backupDir)
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("backups = %v", backups)
	}

	if err := os.WriteFile(cfgPath, []byte("[general]\nmotd = changed\n"), 0o644); err != nil {
		t.Fatalf("overwrite config: %v", err)
	}
	if err := Restore(cfgPath, backupDir, backups[0].Filename); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	data, _ := os.ReadFile(cfgPath)
	if string(data) != sampleConfig {
		t.Error("restore did not bring back the original config")
	}

	if err := Restore(cfgPath, backupDir, "../evil.ini"); err == nil {
		t.Error("path traversal accepted")
	}
	if err := Restore(cfgPath, backupDir, "config-nope.ini"); err == nil {
		t.Error("missing backup accepted")
	}
}
