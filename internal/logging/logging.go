package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileSink mirrors log entries into a JSON lines file. The file is opened on the first
// entry, so the path and level can still change after the logger is built.
type FileSink struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	suspended bool
	level     zap.AtomicLevel
}

// NewFileSink returns a sink writing to path. An empty path discards everything.
func NewFileSink(path string, debug bool) *FileSink {
	s := &FileSink{path: path, level: zap.NewAtomicLevel()}
	s.SetDebug(debug)
	return s
}

func (s *FileSink) Path() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// SetPath points the sink at another file. The previous file is closed.
func (s *FileSink) SetPath(path string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == s.path {
		return nil
	}
	err := s.closeLocked()
	s.path = path
	return err
}

// Suspend drops entries until Resume is called.
func (s *FileSink) Suspend() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.suspended = true
	s.mu.Unlock()
}

func (s *FileSink) Resume() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.suspended = false
	s.mu.Unlock()
}

func (s *FileSink) SetDebug(debug bool) {
	if s == nil {
		return
	}
	if debug {
		s.level.SetLevel(zapcore.DebugLevel)
	} else {
		s.level.SetLevel(zapcore.InfoLevel)
	}
}

// Enabled implements zapcore.LevelEnabler.
func (s *FileSink) Enabled(level zapcore.Level) bool {
	s.mu.Lock()
	on := s.path != "" && !s.suspended
	s.mu.Unlock()
	return on && s.level.Enabled(level)
}

func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" || s.suspended {
		return len(p), nil
	}
	if s.file == nil {
		if err := s.openLocked(); err != nil {
			return 0, err
		}
	}
	return s.file.Write(p)
}

func (s *FileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

func (s *FileSink) openLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	s.file = file
	return nil
}

func (s *FileSink) closeLocked() error {
	if s.file == nil {
		return nil
	}
	file := s.file
	s.file = nil
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	return file.Close()
}

func (s *FileSink) Attach(base *zap.Logger) *zap.Logger {
	if s == nil {
		return base
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), s, s)
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
}

func (s *FileSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}
