package game

import "fmt"

type Severity string

const (
	SeverityGood Severity = "good"
	SeverityBad  Severity = "bad"
	SeverityInfo Severity = "info"
)

type JournalEntry struct {
	Day      int      `json:"day"`
	Hour     int      `json:"hour"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (e JournalEntry) String() string {
	return fmt.Sprintf("[Day %d, %02d:00] %s", e.Day, e.Hour, e.Message)
}

const journalCap = 100

// Journal is the player-facing notification sink. It keeps the most recent
// entries and fans each one out to an optional hook. A panicking hook is
// swallowed so a broken listener can never stall a tick.
type Journal struct {
	entries []JournalEntry
	hook    func(JournalEntry)
}

func NewJournal(hook func(JournalEntry)) *Journal {
	return &Journal{hook: hook}
}

func (j *Journal) Push(day, hour int, sev Severity, format string, args ...any) {
	if j == nil {
		return
	}
	entry := JournalEntry{
		Day:      day,
		Hour:     hour,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	}
	j.entries = append(j.entries, entry)
	if len(j.entries) > journalCap {
		j.entries = j.entries[len(j.entries)-journalCap:]
	}
	if j.hook != nil {
		func() {
			defer func() { _ = recover() }()
			j.hook(entry)
		}()
	}
}

// Tail returns up to n most recent entries, oldest first.
func (j *Journal) Tail(n int) []JournalEntry {
	if j == nil || n <= 0 {
		return nil
	}
	if n > len(j.entries) {
		n = len(j.entries)
	}
	out := make([]JournalEntry, n)
	copy(out, j.entries[len(j.entries)-n:])
	return out
}

func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.entries)
}
