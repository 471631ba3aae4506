package reminder

import (
	"time"

	"github.com/google/uuid"

	"stretchtime/internal/logger"
)

// LogTypeDaily marks entries written by the daily reminder.
const LogTypeDaily = "daily-reminder"

// LogEntry records one delivered reminder.
type LogEntry struct {
	ID        string `yaml:"id" json:"id"`
	Timestamp int64  `yaml:"timestamp" json:"timestamp"`
	Date      string `yaml:"date" json:"date"`
	Type      string `yaml:"type" json:"type"`
}

// Time returns the entry timestamp.
func (entry LogEntry) Time() time.Time {
	return time.UnixMilli(entry.Timestamp)
}

func newLogEntry(at time.Time) LogEntry {
	return LogEntry{
		ID:        uuid.NewString(),
		Timestamp: at.UnixMilli(),
		Date:      at.UTC().Format(time.RFC3339),
		Type:      LogTypeDaily,
	}
}

// appendLog adds entry and evicts the oldest entries beyond limit.
func appendLog(entries []LogEntry, entry LogEntry, limit int) []LogEntry {
	entries = append(entries, entry)
	if limit > 0 && len(entries) > limit {
		entries = append([]LogEntry(nil), entries[len(entries)-limit:]...)
	}
	return entries
}

func loadLog(store Store) []LogEntry {
	if store == nil {
		return nil
	}
	var entries []LogEntry
	found, err := store.Load(LogKey, &entries)
	if err != nil {
		logger.Warn("reminder log unreadable, starting empty", "error", err)
		return nil
	}
	if !found {
		return nil
	}
	return entries
}
