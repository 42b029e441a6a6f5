package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if count < maxLines {
		return ring[:count], nil
	}
	return append(ring[next:], ring[:next]...), nil
}

// consoleLevels maps the abbreviations zerolog.ConsoleWriter prints.
var consoleLevels = map[string]zerolog.Level{
	"TRC": zerolog.TraceLevel,
	"DBG": zerolog.DebugLevel,
	"INF": zerolog.InfoLevel,
	"WRN": zerolog.WarnLevel,
	"ERR": zerolog.ErrorLevel,
	"FTL": zerolog.FatalLevel,
	"PNC": zerolog.PanicLevel,
}

// LevelOf extracts the level of a console or JSON log line. ok is false
// for lines without one, such as continuation lines.
func LevelOf(line string) (zerolog.Level, bool) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var entry struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal([]byte(trimmed), &entry); err != nil || entry.Level == "" {
			return zerolog.NoLevel, false
		}
		lvl, err := zerolog.ParseLevel(entry.Level)
		if err != nil {
			return zerolog.NoLevel, false
		}
		return lvl, true
	}
	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return zerolog.NoLevel, false
	}
	lvl, ok := consoleLevels[fields[1]]
	return lvl, ok
}

// Filter keeps lines at or above min. Lines without a level follow the
// decision made for the line before them.
func Filter(lines []string, min zerolog.Level) []string {
	out := make([]string, 0, len(lines))
	keep := false
	for _, line := range lines {
		if lvl, ok := LevelOf(line); ok {
			keep = lvl >= min
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}
