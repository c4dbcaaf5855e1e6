// Package logger keeps a bounded in-memory history of what the emulator
// reports: unmapped bus accesses, odd CPU states, decode errors. Each record
// is a short component tag and a one line message. A message that repeats the
// previous one only bumps its count, so a tight loop hitting the same
// unmapped address costs one slot.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Capacity is the number of records the central log holds before the oldest
// are overwritten.
const Capacity = 256

// Entry is one record. Count is at least 1.
type Entry struct {
	Tag    string
	Detail string
	Count  int
	Last   time.Time
}

func (e Entry) line() string {
	return e.Tag + ": " + e.Detail
}

func (e Entry) String() string {
	if e.Count > 1 {
		return fmt.Sprintf("%s [x%d]\n", e.line(), e.Count)
	}
	return e.line() + "\n"
}

// Ring is a ring of entries. The zero value is not usable; see New.
type Ring struct {
	mu    sync.Mutex
	ring  []Entry
	start int // index of the oldest entry
	size  int
	echo  io.Writer
}

func New(capacity int) *Ring {
	return &Ring{ring: make([]Entry, capacity)}
}

// newest returns the most recent entry or nil.
func (l *Ring) newest() *Entry {
	if l.size == 0 {
		return nil
	}
	return &l.ring[(l.start+l.size-1)%len(l.ring)]
}

func (l *Ring) Add(tag, detail string) {
	tag = singleLine(tag)
	detail = singleLine(detail)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if e := l.newest(); e != nil && e.Tag == tag && e.Detail == detail {
		e.Count++
		e.Last = now
	} else {
		slot := (l.start + l.size) % len(l.ring)
		if l.size == len(l.ring) {
			l.start = (l.start + 1) % len(l.ring)
		} else {
			l.size++
		}
		l.ring[slot] = Entry{Tag: tag, Detail: detail, Count: 1, Last: now}
	}

	if l.echo != nil {
		fmt.Fprintf(l.echo, "%s: %s\n", tag, detail)
	}
}

func singleLine(s string) string {
	return strings.ReplaceAll(s, "\n", "")
}

// Recent returns up to n of the newest entries, oldest first.
func (l *Ring) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n = min(max(n, 0), l.size)
	out := make([]Entry, n)
	for i := range out {
		out[i] = l.ring[(l.start+l.size-n+i)%len(l.ring)]
	}
	return out
}

func (l *Ring) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start, l.size = 0, 0
}

// Echo copies every message to w as it is added. Repeats are echoed too. A
// nil w stops echoing.
func (l *Ring) Echo(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = w
}

var central = New(Capacity)

// Log adds a message to the central log.
func Log(tag, detail string) {
	central.Add(tag, detail)
}

// Logf adds a formatted message to the central log.
func Logf(tag, format string, args ...any) {
	central.Add(tag, fmt.Sprintf(format, args...))
}

// Clear empties the central log.
func Clear() {
	central.Reset()
}

// Entries returns the whole central log, oldest first.
func Entries() []Entry {
	return central.Recent(Capacity)
}

// Tail writes the newest n entries of the central log to w.
func Tail(w io.Writer, n int) {
	for _, e := range central.Recent(n) {
		io.WriteString(w, e.String())
	}
}

// Write writes the whole central log to w.
func Write(w io.Writer) {
	Tail(w, Capacity)
}

// SetEcho copies every new message of the central log to w. A nil w stops
// echoing.
func SetEcho(w io.Writer) {
	central.Echo(w)
}
