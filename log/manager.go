// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package log

import (
	"fmt"
	"sync"
)

// Manager owns a named collection of loggers, looked up by name.
type Manager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

// NewManager constructs an empty manager.
func NewManager() *Manager {
	return &Manager{loggers: make(map[string]*Logger)}
}

// FindLogger returns the named logger, creating it with the given
// level/capacity if it does not already exist.
func (m *Manager) FindLogger(name string, level Level, capacity int) *Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[name]; ok {
		return l
	}
	l := New(name, level, capacity)
	m.loggers[name] = l
	return l
}

// RemoveLogger closes and forgets the named logger.
func (m *Manager) RemoveLogger(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[name]; ok {
		l.Close()
		delete(m.loggers, name)
	}
}

var (
	rootOnce    sync.Once
	rootManager *Manager
	root        *Logger
)

// Init builds the process-wide root manager and logger from specs,
// where specs is typically decoded from config.Config.Loggers. It must
// be called exactly once from the bootstrap, per the corpus's design
// note against implicit initialization on first use. Calling it more
// than once panics.
func Init(specs []LoggerSpec) {
	var initialized bool
	rootOnce.Do(func() {
		initialized = true
		rootManager = NewManager()
		root = buildFromSpecs(rootManager, specs)
	})
	if !initialized {
		panic("log: Init called more than once")
	}
}

// Root returns the process-wide root logger. It panics if Init has
// not been called.
func Root() *Logger {
	if root == nil {
		panic("log: Root() called before Init()")
	}
	return root
}

// RootManager returns the process-wide logger manager. It panics if
// Init has not been called.
func RootManager() *Manager {
	if rootManager == nil {
		panic("log: RootManager() called before Init()")
	}
	return rootManager
}

// LoggerSpec is the decoded form of one config.LoggerConfig entry,
// kept free of a direct import of the config package to avoid a
// dependency cycle.
type LoggerSpec struct {
	Name      string
	Level     string
	Capacity  int
	Formatter string
	Appenders []AppenderSpec
}

// AppenderSpec is the decoded form of one config.AppenderConfig entry.
type AppenderSpec struct {
	Type      string
	File      string
	Formatter string
}

func buildFromSpecs(m *Manager, specs []LoggerSpec) *Logger {
	var first *Logger
	for _, spec := range specs {
		level, err := ParseLevel(spec.Level)
		if err != nil {
			level = Info
		}
		logger := m.FindLogger(spec.Name, level, spec.Capacity)
		if spec.Formatter != "" {
			if f, err := NewFormatter(spec.Formatter); err == nil {
				logger.SetDefaultFormatter(f)
			}
		}
		for _, a := range spec.Appenders {
			appender, err := buildAppender(a)
			if err != nil {
				continue
			}
			logger.AddAppender(appender)
		}
		if first == nil {
			first = logger
		}
	}
	if first == nil {
		first = m.FindLogger("root", Info, 0)
		first.AddAppender(NewStdoutAppender())
	}
	return first
}

func buildAppender(spec AppenderSpec) (Appender, error) {
	switch spec.Type {
	case "stdout":
		return NewStdoutAppender(), nil
	case "file":
		return NewFileAppender(spec.File)
	default:
		return nil, fmt.Errorf("log: unrecognized appender type %q", spec.Type)
	}
}
