package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pageform/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompts from user-editable files, falling back to the
// built-in defaults. Files are written lazily on the first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const formGenerationPrompt = `You are an expert in reading complex documents.
Task: extract the information from the attached page and convert the physical document into a digital version that imitates the physical form. Keep all information prefilled and editable.
The accuracy of the extracted information, especially filled-in values, is absolutely important. Take care of multilingual text, checkboxes and handwriting within the document.
Return HTML with good styling for review. If you are not confident about any field or section, mark that area in red so that a human can rectify it easily.
The output must be the HTML page content only, without any prefix or suffix.`

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const signaturesAddendum = `
Additionally, locate every signature on the page. Cross-reference signatures that appear to belong to the same person and group them together in the form.
If two signatures attributed to the same person look different, mark both in red and add a short note explaining the mismatch.`

// defaultPrompts are written to disk on first use and used when a file is missing.
var defaultPrompts = map[string]string{
	driven.PromptFormGeneration:           formGenerationPrompt,
	driven.PromptFormGenerationSignatures: formGenerationPrompt + "\n" + signaturesAddendum,
}

// DefaultPrompt returns the built-in text for a prompt name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a prompt store rooted at promptDir.
// If promptDir is empty, defaults to ~/.pageform/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt for name. An empty or missing file falls back
// to the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		if err == nil {
			err = errors.New("prompt file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Path returns the file backing a prompt name.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

// Write replaces a prompt file and drops its cached value.
func (s *PromptStore) Write(name, content string) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}
	if err := os.WriteFile(s.Path(name), []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write prompt %q: %w", name, err)
	}

	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
	return nil
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := s.Path(name)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
