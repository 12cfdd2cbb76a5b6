package server

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"redline/internal/config"
)

// WatchConfig reloads the runtime config whenever the YAML file at path
// changes, until the context is cancelled. Editors often replace the file
// rather than write it in place, so the watch covers the parent directory
// and filters on the file name.
func (s *Server) WatchConfig(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	name := filepath.Base(path)
	s.log.Info("watching config file", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reloadFrom(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("config watch error", zap.Error(err))
		}
	}
}

func (s *Server) reloadFrom(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		s.log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.SetConfig(RuntimeConfigFromLLM(cfg.LLM))
	s.log.Info("config reloaded", zap.String("path", path), zap.String("model", cfg.LLM.Model))
}

// RuntimeConfigFromLLM maps the file-level LLM section onto the proxy's
// runtime routing state.
func RuntimeConfigFromLLM(llm config.LLMConfig) RuntimeConfig {
	return RuntimeConfig{
		APIURL:    llm.BaseURL,
		APIKey:    llm.APIKey,
		Model:     llm.Model,
		MaxTokens: llm.MaxTokens,
	}
}
