// Package logbook reads the JSON diagnostic log back for display in the
// inspector.
package logbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// Entry is one decoded log line.
type Entry struct {
	Time    time.Time
	Level   string
	Tenant  string
	Message string
}

func (e Entry) String() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.UTC().Format(time.TimeOnly))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	if e.Tenant != "" {
		b.WriteString("[" + e.Tenant + "] ")
	}
	b.WriteString(e.Message)
	return b.String()
}

type line struct {
	TS     float64 `json:"ts"`
	Level  string  `json:"level"`
	Msg    string  `json:"msg"`
	Tenant string  `json:"tenant"`
}

// Logbook tails a log file written by the logging package.
type Logbook struct {
	path string
}

// New returns a logbook over path. The file need not exist yet.
func New(path string) *Logbook {
	return &Logbook{path: path}
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Tail returns up to maxLines of the most recent entries and the total number
// of entries in the file. Lines that are not JSON are kept as raw messages.
func (l *Logbook) Tail(maxLines int) ([]Entry, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		entries = append(entries, decode(text))
	}
	total := len(entries)
	if total > maxLines {
		entries = entries[total-maxLines:]
	}
	return entries, total
}

func decode(text string) Entry {
	var raw line
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Entry{Message: text}
	}
	entry := Entry{Level: raw.Level, Tenant: raw.Tenant, Message: raw.Msg}
	if raw.TS > 0 {
		sec, frac := math.Modf(raw.TS)
		entry.Time = time.Unix(int64(sec), int64(frac*1e9))
	}
	return entry
}
