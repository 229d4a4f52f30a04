package iniconf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupTimeLayout = "20060102-150405"

// BackupInfo describes one stored config backup.
type BackupInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// Backup copies the config at cfgPath into backupDir under a timestamped
// name and returns the backup path. Every destructive config operation
// calls this first.
func Backup(cfgPath, backupDir string) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	// Names must never collide: Restore snapshots the current config before
	// copying a backup back, and a collision there would overwrite the very
	// backup being restored.
	stamp := time.Now().Format(backupTimeLayout)
	dst := filepath.Join(backupDir, "config-"+stamp+".ini")
	for n := 1; ; n++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(backupDir, fmt.Sprintf("config-%s-%d.ini", stamp, n))
	}
	if err := copyFile(cfgPath, dst); err != nil {
		return "", fmt.Errorf("backup config: %w", err)
	}
	return dst, nil
}

// ListBackups returns stored backups, newest filename first.
func ListBackups(backupDir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "config-") || !strings.HasSuffix(name, ".ini") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Filename: name,
			Path:     filepath.Join(backupDir, name),
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Filename > backups[j].Filename })
	return backups, nil
}

// Restore replaces the config with a stored backup. The current config is
// backed up first so a restore is itself reversible.
func Restore(cfgPath, backupDir, filename string) error {
	if strings.Contains(filename, "..") || strings.ContainsRune(filename, os.PathSeparator) {
		return fmt.Errorf("invalid backup filename %q", filename)
	}
	src := filepath.Join(backupDir, filename)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("backup not found: %w", err)
	}
	if _, err := Backup(cfgPath, backupDir); err != nil {
		return err
	}
	if err := copyFile(src, cfgPath); err != nil {
		return fmt.Errorf("restore config: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
