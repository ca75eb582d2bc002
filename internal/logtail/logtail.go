package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Entry is one parsed line of the shopdeck log.
type Entry struct {
	Time    string
	Level   string // lowercase: debug, info, warn, error; empty for continuation lines
	Logger  string
	Caller  string
	Message string
	Fields  string
	Raw     string
}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

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
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Tail reads and parses the last maxLines of the log at path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse splits a zap console or JSON line into its parts. Lines that match
// neither shape, such as stack trace continuations, only carry Raw.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		if e, ok := parseJSON(trimmed); ok {
			e.Raw = line
			return e
		}
	}
	return parseConsole(line)
}

func parseConsole(line string) Entry {
	parts := strings.Split(line, "\t")
	if len(parts) < 3 || !isLevel(parts[1]) {
		return Entry{Raw: line}
	}

	e := Entry{
		Time:  parts[0],
		Level: normalizeLevel(parts[1]),
		Raw:   line,
	}
	rest := parts[2:]
	if last := rest[len(rest)-1]; len(rest) > 1 && strings.HasPrefix(last, "{") {
		e.Fields = last
		rest = rest[:len(rest)-1]
	}
	e.Message = rest[len(rest)-1]
	for _, part := range rest[:len(rest)-1] {
		if strings.Contains(part, ".go:") {
			e.Caller = part
		} else {
			e.Logger = part
		}
	}
	return e
}

func parseJSON(line string) (Entry, bool) {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return Entry{}, false
	}
	level, _ := record["level"].(string)
	if !isLevel(level) {
		return Entry{}, false
	}

	str := func(key string) string {
		v, _ := record[key].(string)
		delete(record, key)
		return v
	}
	e := Entry{
		Level:   normalizeLevel(str("level")),
		Time:    str("time"),
		Logger:  str("logger"),
		Caller:  str("caller"),
		Message: str("msg"),
	}
	delete(record, "stacktrace")

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", k, record[k]))
	}
	e.Fields = strings.Join(fields, " ")
	return e, true
}

func isLevel(s string) bool {
	switch normalizeLevel(s) {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
		return true
	}
	return false
}

func normalizeLevel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
