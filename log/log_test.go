// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package log

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingAppender struct {
	mu   sync.Mutex
	logs []string
}

func (a *recordingAppender) Log(loggerName string, event Event, formatter *Formatter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, formatter.Format(loggerName, event))
}

func (a *recordingAppender) Close() error { return nil }

func (a *recordingAppender) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.logs))
	copy(out, a.logs)
	return out
}

func TestSyncLoggerDropsEventsBelowLevel(t *testing.T) {
	l := New("test", Warn, 0)
	rec := &recordingAppender{}
	l.AddAppender(rec)

	l.Infof("should be dropped")
	l.Errorf("should be kept")

	logs := rec.snapshot()
	if len(logs) != 1 {
		t.Fatalf("expected 1 event, got %d: %v", len(logs), logs)
	}
	if !strings.Contains(logs[0], "should be kept") {
		t.Fatalf("unexpected log: %q", logs[0])
	}
}

func TestAsyncLoggerDeliversAfterClose(t *testing.T) {
	l := New("async", Debug, 8)
	rec := &recordingAppender{}
	l.AddAppender(rec)

	for i := 0; i < 5; i++ {
		l.Infof("event %d", i)
	}
	l.Close()

	if len(rec.snapshot()) != 5 {
		t.Fatalf("expected 5 events delivered after close, got %d", len(rec.snapshot()))
	}
}

func TestRemoveAppenderActuallyErasesIt(t *testing.T) {
	l := New("test", Debug, 0)
	a1 := &recordingAppender{}
	a2 := &recordingAppender{}
	l.AddAppender(a1)
	l.AddAppender(a2)

	l.RemoveAppender(a1)
	l.Infof("hello")

	if len(a1.snapshot()) != 0 {
		t.Fatalf("expected removed appender to receive nothing, got %v", a1.snapshot())
	}
	if len(a2.snapshot()) != 1 {
		t.Fatalf("expected remaining appender to receive the event")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	l := New("test", Debug, 4)
	if err := l.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestFormatterTagVocabulary(t *testing.T) {
	f, err := NewFormatter("%p|%c|%m")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	out := f.Format("mylogger", Event{Level: Error, Time: time.Now(), Message: "boom"})
	if out != "ERROR|mylogger|boom" {
		t.Fatalf("unexpected formatted output: %q", out)
	}
}

func TestNewFormatterRejectsUnknownTag(t *testing.T) {
	if _, err := NewFormatter("%z"); err == nil {
		t.Fatalf("expected error for unrecognized tag")
	}
}
