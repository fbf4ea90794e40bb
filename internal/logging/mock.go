package logging

import "sync"

// MockLogger records log entries for assertions in tests. Loggers derived
// with WithField, WithFields or WithError share the parent's record, and
// it is safe for concurrent use.
type MockLogger struct {
	record        *mockRecord
	pendingError  error
	pendingFields []Field
}

type mockRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is a single entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{record: &mockRecord{}}
}

func (m *MockLogger) log(level, msg string, fields []Field) {
	if m.record == nil {
		m.record = &mockRecord{}
	}
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)

	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	m.record.entries = append(m.record.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

// Debug records a debug-level message.
func (m *MockLogger) Debug(msg string, fields ...Field) { m.log("DEBUG", msg, fields) }

// Info records an info-level message.
func (m *MockLogger) Info(msg string, fields ...Field) { m.log("INFO", msg, fields) }

// Warn records a warning-level message.
func (m *MockLogger) Warn(msg string, fields ...Field) { m.log("WARN", msg, fields) }

// Error records an error-level message.
func (m *MockLogger) Error(msg string, fields ...Field) { m.log("ERROR", msg, fields) }

// WithError returns a logger with an error attached.
func (m *MockLogger) WithError(err error) Logger {
	m.ensureRecord()
	return &MockLogger{
		record:        m.record,
		pendingError:  err,
		pendingFields: m.pendingFields,
	}
}

// WithField returns a logger with a single field attached.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

// WithFields returns a logger with multiple fields attached.
func (m *MockLogger) WithFields(fields ...Field) Logger {
	m.ensureRecord()
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)
	return &MockLogger{
		record:        m.record,
		pendingError:  m.pendingError,
		pendingFields: all,
	}
}

func (m *MockLogger) ensureRecord() {
	if m.record == nil {
		m.record = &mockRecord{}
	}
}

// GetEntries returns a copy of all captured entries.
func (m *MockLogger) GetEntries() []LogEntry {
	m.ensureRecord()
	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	out := make([]LogEntry, len(m.record.entries))
	copy(out, m.record.entries)
	return out
}

// GetEntriesByLevel returns the captured entries of one level.
func (m *MockLogger) GetEntriesByLevel(level string) []LogEntry {
	var entries []LogEntry
	for _, entry := range m.GetEntries() {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Clear drops all captured entries.
func (m *MockLogger) Clear() {
	m.ensureRecord()
	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	m.record.entries = nil
}

// HasEntry reports whether an entry with the given level and message exists.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, entry := range m.GetEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

// FieldValue returns the value of key on the first entry with message.
func (m *MockLogger) FieldValue(message, key string) (interface{}, bool) {
	for _, entry := range m.GetEntries() {
		if entry.Message != message {
			continue
		}
		for _, f := range entry.Fields {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return nil, false
}
