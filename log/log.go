// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package log is a leveled, appender-based logging system. A logger
// with a positive capacity becomes asynchronous: events are handed to
// a buffered channel and written by one consumer goroutine, so the
// caller blocks only while that channel is full.
package log

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level orders event severity, lowest first.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String renders the level's name.
func (l Level) String() string {
	if l < Debug || l > Fatal {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, s) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("log: unrecognized level %q", s)
}

// Event is one log record, captured at the call site.
type Event struct {
	Level    Level
	Time     time.Time
	File     string
	Line     int
	ThreadID int64
	Message  string
}

func newEvent(level Level, message string) Event {
	_, file, line, _ := runtime.Caller(2)
	return Event{
		Level:    level,
		Time:     time.Now(),
		File:     filepath.Base(file),
		Line:     line,
		ThreadID: int64(goroutineID()),
		Message:  message,
	}
}

// Appender writes formatted events somewhere: stdout, a file, etc.
type Appender interface {
	Log(loggerName string, event Event, formatter *Formatter)
	Close() error
}

// Logger holds an ordered list of appenders and a minimum level.
// Events below the minimum level are dropped before formatting.
type Logger struct {
	name      string
	level     Level
	formatter *Formatter

	mu        sync.Mutex
	appenders []Appender

	queue  chan Event
	closed chan struct{}
	wg     sync.WaitGroup
}

// New constructs a logger. A capacity of 0 makes it synchronous: each
// logging call blocks its caller until every appender has written the
// event. A
// positive capacity makes it asynchronous over a buffered channel
// drained by one consumer goroutine, per the corpus's design note
// preferring an idiomatic channel over a hand-rolled bounded deque.
func New(name string, level Level, capacity int) *Logger {
	l := &Logger{
		name:      name,
		level:     level,
		formatter: DefaultFormatter(),
	}
	if capacity > 0 {
		l.queue = make(chan Event, capacity)
		l.closed = make(chan struct{})
		l.wg.Add(1)
		go l.consume()
	}
	return l
}

// Name returns the logger's name.
func (l *Logger) Name() string {
	return l.name
}

// Level returns the logger's minimum level.
func (l *Logger) Level() Level {
	return l.level
}

// SetLevel changes the minimum level future events must meet.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Capacity returns the asynchronous queue's capacity, or 0 if the
// logger is synchronous.
func (l *Logger) Capacity() int {
	return cap(l.queue)
}

// SetDefaultFormatter sets the formatter used by appenders that were
// added without one of their own.
func (l *Logger) SetDefaultFormatter(f *Formatter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.formatter = f
}

// AddAppender attaches an appender to the logger.
func (l *Logger) AddAppender(a Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appenders = append(l.appenders, a)
}

// RemoveAppender removes every appender equal to a from the logger's
// list, erasing the slice gap rather than leaving a trailing stale
// reference.
func (l *Logger) RemoveAppender(a Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.appenders[:0]
	for _, existing := range l.appenders {
		if existing != a {
			kept = append(kept, existing)
		}
	}
	for i := len(kept); i < len(l.appenders); i++ {
		l.appenders[i] = nil
	}
	l.appenders = kept
}

// ClearAppenders removes every appender.
func (l *Logger) ClearAppenders() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appenders = nil
}

func (l *Logger) log(event Event) {
	if event.Level < l.level {
		return
	}
	if l.queue != nil {
		select {
		case l.queue <- event:
		case <-l.closed:
		}
		return
	}
	l.write(event)
}

func (l *Logger) write(event Event) {
	l.mu.Lock()
	appenders := l.appenders
	formatter := l.formatter
	name := l.name
	l.mu.Unlock()

	for _, a := range appenders {
		func() {
			defer func() { recover() }()
			a.Log(name, event, formatter)
		}()
	}
}

func (l *Logger) consume() {
	defer l.wg.Done()
	for {
		select {
		case event := <-l.queue:
			l.write(event)
		case <-l.closed:
			for {
				select {
				case event := <-l.queue:
					l.write(event)
				default:
					return
				}
			}
		}
	}
}

// Close stops the consumer goroutine of an asynchronous logger,
// draining any events already queued. It is a no-op for synchronous
// loggers and safe to call more than once.
func (l *Logger) Close() error {
	if l.queue == nil {
		return nil
	}
	select {
	case <-l.closed:
		return nil
	default:
		close(l.closed)
	}
	l.wg.Wait()
	return nil
}

// Debugf, Infof, Warnf, Errorf and Fatalf format and log an event at
// the named level.
func (l *Logger) Debugf(format string, args ...any) { l.log(newEvent(Debug, fmt.Sprintf(format, args...))) }
func (l *Logger) Infof(format string, args ...any)  { l.log(newEvent(Info, fmt.Sprintf(format, args...))) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(newEvent(Warn, fmt.Sprintf(format, args...))) }
func (l *Logger) Errorf(format string, args ...any) { l.log(newEvent(Error, fmt.Sprintf(format, args...))) }
func (l *Logger) Fatalf(format string, args ...any) { l.log(newEvent(Fatal, fmt.Sprintf(format, args...))) }

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for _, b := range buf[len("goroutine "):n] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + uint64(b-'0')
	}
	return id
}
