package agent

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// defaultPromptTemplate defines the agent's behaviour. Tenant and
// environment are filled in per process.
const defaultPromptTemplate = `You are a helpful assistant for {{.TenantID}}.

Your role is to:
1. Answer questions clearly and accurately
2. Help users accomplish their tasks efficiently
3. Use available tools when they would help answer the question
4. Remember important context from the conversation

Always be polite, professional, and helpful. If you're unsure about
something, acknowledge the uncertainty rather than guessing.

Current environment: {{.Environment}}
`

// PromptStore holds the system prompt template. The embedded default
// can be overridden by a prompt file, which is hot-reloaded while
// serving so prompt changes don't require a restart.
type PromptStore struct {
	mu       sync.RWMutex
	tmpl     *template.Template
	filePath string
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
}

type promptData struct {
	TenantID    string
	Environment string
}

// NewPromptStore creates a prompt store with the embedded default
// template. filePath may be empty.
func NewPromptStore(filePath string, logger zerolog.Logger) (*PromptStore, error) {
	s := &PromptStore{
		filePath: filePath,
		logger:   logger,
	}
	if err := s.set(defaultPromptTemplate); err != nil {
		return nil, err
	}
	if filePath != "" {
		if err := s.loadFile(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Render produces the system prompt for a tenant.
func (s *PromptStore) Render(tenantID, environment string) (string, error) {
	s.mu.RLock()
	tmpl := s.tmpl
	s.mu.RUnlock()

	var b strings.Builder
	if err := tmpl.Execute(&b, promptData{TenantID: tenantID, Environment: environment}); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return b.String(), nil
}

// Watch reloads the prompt file on change. No-op when no file is
// configured. Call Close to stop watching.
func (s *PromptStore) Watch() error {
	if s.filePath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create prompt watcher: %w", err)
	}
	if err := watcher.Add(s.filePath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch prompt file: %w", err)
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.loadFile(); err != nil {
					s.logger.Warn().Err(err).Msg("Failed to reload prompt file")
					continue
				}
				s.logger.Info().Str("file", s.filePath).Msg("System prompt reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn().Err(err).Msg("Prompt watcher error")
			}
		}
	}()

	return nil
}

// Close stops the prompt file watcher.
func (s *PromptStore) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *PromptStore) loadFile() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read prompt file: %w", err)
	}
	if err := s.set(string(data)); err != nil {
		return fmt.Errorf("invalid prompt template: %w", err)
	}
	return nil
}

func (s *PromptStore) set(raw string) error {
	tmpl, err := template.New("system_prompt").Parse(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tmpl = tmpl
	s.mu.Unlock()
	return nil
}
