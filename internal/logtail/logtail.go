// Package logtail reads the trailing portion of an append-only log file
// without loading the whole file.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// bytesPerLine is a generous per-line size estimate used to size the read
// window. The tail N of whatever the window captured is returned regardless,
// so the estimate only has to be an upper bound on the typical case.
const bytesPerLine = 400

// Read returns at most maxLines complete lines from the end of the file at
// path. A missing or empty file yields no lines and no error. Invalid bytes
// in the file are passed through rather than treated as a failure.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	size := info.Size()
	if size == 0 {
		return nil, nil
	}

	// The estimate is only a starting point: lines longer than it can leave
	// the window with too few complete lines (or none, when the seek lands
	// inside the final line), so the window doubles until enough lines are
	// captured or it covers the whole file.
	for window := int64(maxLines) * bytesPerLine; ; window *= 2 {
		seeked := size > window
		offset := int64(0)
		if seeked {
			offset = size - window
		}
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek log: %w", err)
		}

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		if seeked {
			// The seek almost certainly landed mid-line; drop the partial line.
			scanner.Scan()
		}
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		if len(lines) >= maxLines || !seeked {
			if len(lines) > maxLines {
				lines = lines[len(lines)-maxLines:]
			}
			return lines, nil
		}
	}
}
