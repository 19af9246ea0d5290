package output

import (
	"slices"
	"sync"

	"github.com/watchfire-io/launchpad/internal/models"
)

// journalLimit bounds how many recent changes a Log remembers for Since.
const journalLimit = 4096

// Delta is one change recorded by a Log.
type Delta struct {
	Op    Op
	Index int
	Entry models.LogEntry
}

// Update is what changed in a Log after a given version. When Reset is set
// the reader must discard what it has and start over from Entries; that
// happens after Clear or when the reader fell too far behind.
type Update struct {
	Version uint64
	Reset   bool
	Entries []models.LogEntry
	Deltas  []Delta
}

// Log owns the ordered entry sequence and hands out monotonic entry ids.
// It is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	entries  []models.LogEntry
	progress int // index of the last progress entry, -1 when none
	nextID   uint64
	version  uint64

	journal []Delta
	base    uint64 // version just before journal[0]
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{progress: -1}
}

// Apply reconciles an output event into the log. It follows the same rules
// as the package-level Apply but updates the owned sequence in place.
func (l *Log) Apply(ev models.OutputEvent) Change {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := candidate(ev, l.nextID+1)
	if !ok {
		return Change{Op: OpIgnored, Index: -1}
	}
	l.nextID++

	if replacesLast(ev) && l.progress >= 0 {
		k := l.progress
		l.entries[k] = entry
		change := Change{Op: OpReplaced, Index: k}
		l.record(change, entry)
		return change
	}

	return l.push(entry)
}

// AppendSummary appends the terminal entry for a process exit code.
func (l *Log) AppendSummary(exitCode int) models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	entry := Summary(exitCode, l.nextID)
	l.push(entry)
	return entry
}

// AppendError appends a red error line.
func (l *Log) AppendError(text string) models.LogEntry {
	return l.appendKind(text, models.KindError)
}

// AppendSystem appends an informational line.
func (l *Log) AppendSystem(text string) models.LogEntry {
	return l.appendKind(text, models.KindSystem)
}

func (l *Log) appendKind(text string, kind models.OutputKind) models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	entry := models.LogEntry{ID: l.nextID, Text: text, Kind: kind}
	l.push(entry)
	return entry
}

func (l *Log) push(entry models.LogEntry) Change {
	change := Change{Op: OpAppended, Index: len(l.entries)}
	l.entries = append(l.entries, entry)
	if entry.IsProgress {
		l.progress = change.Index
	}
	l.record(change, entry)
	return change
}

func (l *Log) record(change Change, entry models.LogEntry) {
	l.version++
	l.journal = append(l.journal, Delta{Op: change.Op, Index: change.Index, Entry: entry})
	if len(l.journal) > journalLimit {
		drop := len(l.journal) - journalLimit/2
		n := copy(l.journal, l.journal[drop:])
		clear(l.journal[n:])
		l.journal = l.journal[:n]
		l.base += uint64(drop)
	}
}

// Clear drops every entry. Ids keep increasing across clears.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.progress = -1
	l.version++
	l.journal = nil
	l.base = l.version
}

// Since reports the changes made after version.
func (l *Log) Since(version uint64) Update {
	l.mu.RLock()
	defer l.mu.RUnlock()

	u := Update{Version: l.version}
	switch {
	case version == l.version:
	case version < l.base || version > l.version:
		u.Reset = true
		u.Entries = slices.Clone(l.entries)
	default:
		u.Deltas = slices.Clone(l.journal[version-l.base:])
	}
	return u
}

// Snapshot returns the whole sequence as a Reset update.
func (l *Log) Snapshot() Update {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Update{Version: l.version, Reset: true, Entries: slices.Clone(l.entries)}
}

// Entries returns a copy of the current sequence.
func (l *Log) Entries() []models.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Version increases on every mutation.
func (l *Log) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}
