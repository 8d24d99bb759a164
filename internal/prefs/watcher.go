package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangedMsg is sent when the preferences file is written.
type ChangedMsg struct {
	Prefs Prefs
}

// Sender can receive messages (matches *tea.Program).
type Sender interface {
	Send(msg tea.Msg)
}

// Watcher reloads preferences when their file changes.
type Watcher struct {
	w      *fsnotify.Watcher
	path   string
	sender Sender
	log    *zap.Logger
}

// NewWatcher watches the directory holding path, so the file may be created
// or replaced after startup.
func NewWatcher(path string, sender Sender, logger *zap.Logger) (*Watcher, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{w: fw, path: resolved, sender: sender, log: logger}, nil
}

// Run forwards changes until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.w.Close() }()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			p, _ := Load(w.path)
			w.log.Debug("prefs reloaded", zap.String("theme", p.Theme), zap.String("screen", p.Screen))
			w.sender.Send(ChangedMsg{Prefs: p})
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("prefs watcher error", zap.Error(err))
		}
	}
}
