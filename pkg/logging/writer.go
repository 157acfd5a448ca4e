package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logger settings
type Config struct {
	// Enabled turns logging on; a disabled config yields a NullLogger
	Enabled bool
	// Path is the log file path; empty means stderr
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
	// Color highlights the level in text output
	Color bool
}

var levelColors = map[Level]*color.Color{
	DebugLevel: color.New(color.FgHiBlack),
	InfoLevel:  color.New(color.FgCyan),
	WarnLevel:  color.New(color.FgYellow),
	ErrorLevel: color.New(color.FgRed, color.Bold),
}

// sink is the destination shared by a logger and every logger derived from
// it with WithFields
type sink struct {
	mu          sync.Mutex
	config      Config
	file        *os.File
	writer      io.Writer
	currentSize int64
}

// WriterLogger implements Logger over a writer or a rotating file
type WriterLogger struct {
	sink   *sink
	fields Fields
}

// NewWriterLogger logs to w. Rotation settings are ignored.
func NewWriterLogger(w io.Writer, config Config) *WriterLogger {
	return &WriterLogger{sink: &sink{config: config, writer: w}}
}

// NewStderrLogger logs to standard error
func NewStderrLogger(config Config) *WriterLogger {
	return NewWriterLogger(color.Error, config)
}

// NewFileLogger creates a logger appending to config.Path
func NewFileLogger(config Config) (*WriterLogger, error) {
	// Ensure directory exists
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	// Escape codes make no sense in a file
	config.Color = false

	return &WriterLogger{sink: &sink{
		config:      config,
		file:        file,
		writer:      file,
		currentSize: info.Size(),
	}}, nil
}

// Debug logs a debug message
func (l *WriterLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *WriterLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *WriterLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *WriterLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields sharing the same output
func (l *WriterLogger) WithFields(fields Fields) Logger {
	return &WriterLogger{sink: l.sink, fields: merge(l.fields, fields)}
}

// Close closes the log file, if any
func (l *WriterLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		err := l.sink.file.Close()
		l.sink.file = nil
		l.sink.writer = io.Discard
		return err
	}
	return nil
}

func (l *WriterLogger) log(level Level, msg string, err error, fields Fields) {
	s := l.sink
	if level < s.config.Level {
		return
	}

	all := merge(l.fields, fields)

	var line []byte
	if s.config.Format == FormatJSON {
		var fmtErr error
		if line, fmtErr = formatJSON(level, msg, err, all); fmtErr != nil {
			return
		}
	} else {
		line = formatText(level, msg, err, all, s.config.Color)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil && s.config.MaxSize > 0 && s.currentSize >= s.config.MaxSize {
		s.rotate()
	}

	n, _ := s.writer.Write(line)
	s.currentSize += int64(n)
}

func merge(base, extra Fields) Fields {
	out := make(Fields, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatJSON(level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level.String(),
		"message":   msg,
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	for k, v := range fields {
		entry[k] = v
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}
	return append(data, '\n'), nil
}

// formatText renders "<time> [LEVEL] msg error=... k=v" with keys sorted
func formatText(level Level, msg string, err error, fields Fields, colored bool) []byte {
	var b strings.Builder

	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteString(" ")

	tag := "[" + level.String() + "]"
	if c, ok := levelColors[level]; ok && colored {
		tag = c.Sprint(tag)
	}
	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	for _, k := range sortedKeys(fields) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteString("\n")

	return []byte(b.String())
}

// rotate shifts path.N to path.N+1, moves the live file to path.1 and
// reopens it. Called with the sink lock held.
func (s *sink) rotate() {
	s.file.Close()

	for i := s.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", s.config.Path, i), fmt.Sprintf("%s.%d", s.config.Path, i+1))
	}
	os.Rename(s.config.Path, s.config.Path+".1")

	if s.config.MaxBackups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", s.config.Path, s.config.MaxBackups+1))
	}

	file, err := os.OpenFile(s.config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		s.file = nil
		s.writer = io.Discard
		return
	}

	s.file = file
	s.writer = file
	s.currentSize = 0
}
