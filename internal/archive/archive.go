// Package archive creates and serves gzip snapshots of the bot log.
package archive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

const (
	namePrefix = "meshbot_"
	nameSuffix = ".log.gz"
	nameLayout = "20060102_150405"
)

// Manager owns the archive directory for one log file.
type Manager struct {
	LogPath   string
	Dir       string
	Retention time.Duration
}

// Info describes one stored archive.
type Info struct {
	Filename  string `json:"filename"`
	Date      string `json:"date"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
}

// Create snapshots the current log into a timestamped gzip file and returns
// its filename.
func (m *Manager) Create() (string, error) {
	in, err := os.Open(m.LogPath)
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	name := namePrefix + time.Now().Format(nameLayout) + nameSuffix
	out, err := os.Create(filepath.Join(m.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		out.Close()
		return "", fmt.Errorf("compress log: %w", err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	return name, nil
}

// List returns stored archives, newest first. Files whose names do not
// carry a parsable timestamp are skipped.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive dir: %w", err)
	}
	var archives []Info
	for _, entry := range entries {
		name := entry.Name()
		stamp, ok := parseName(name)
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		archives = append(archives, Info{
			Filename:  name,
			Date:      stamp.Format(time.RFC3339),
			Size:      fi.Size(),
			SizeHuman: fmt.Sprintf("%.1f KB", float64(fi.Size())/1024),
		})
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Filename > archives[j].Filename })
	return archives, nil
}

// Read returns the last maxLines lines of a stored archive.
func (m *Manager) Read(filename string, maxLines int) ([]string, error) {
	if err := validName(filename); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(m.Dir, filename))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	defer zr.Close()

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan archive: %w", err)
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

// Delete removes a stored archive.
func (m *Manager) Delete(filename string) error {
	if err := validName(filename); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(m.Dir, filename)); err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	return nil
}

// Cleanup removes archives older than the retention window and returns how
// many were removed.
func (m *Manager) Cleanup() (int, error) {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read archive dir: %w", err)
	}
	cutoff := time.Now().Add(-m.Retention)
	removed := 0
	for _, entry := range entries {
		stamp, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		if stamp.Before(cutoff) {
			if err := os.Remove(filepath.Join(m.Dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Run archives the log every interval and prunes expired archives, until
// the context is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			name, err := m.Create()
			if err != nil {
				log.Warn().Err(err).Msg("log archive failed")
				continue
			}
			removed, err := m.Cleanup()
			if err != nil {
				log.Warn().Err(err).Msg("archive cleanup failed")
			}
			log.Info().Str("archive", name).Int("pruned", removed).Msg("log archived")
		}
	}
}

func validName(filename string) error {
	if !strings.HasSuffix(filename, ".gz") || strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid archive filename %q", filename)
	}
	return nil
}

func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), nameSuffix)
	ts, err := time.ParseInLocation(nameLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
