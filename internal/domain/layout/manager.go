// Package layout persists builder layout documents server-side: full
// document overwrites keyed by project id, JSON files under a storage
// directory with an in-memory cache in front.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/pagecraft/backend/internal/infrastructure/logging"
)

// Document is the persisted layout payload for one project. Writes are
// whole-document overwrites, not incremental patches.
type Document struct {
	ProjectID string                 `json:"project_id"`
	Layouts   map[string]interface{} `json:"layouts"`
	ViewMode  string                 `json:"view_mode,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Manager handles layout persistence
type Manager struct {
	documents sync.Map
	dir       string
	mu        sync.Mutex // serializes file writes
	logger    *logging.Logger
}

// NewManager creates a layout manager rooted at dir
func NewManager(dir string, logger *logging.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{dir: dir, logger: logger.Named("layout")}, nil
}

// Save overwrites the stored document for a project
func (m *Manager) Save(doc *Document) error {
	if doc.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	doc.UpdatedAt = time.Now()
	if doc.Layouts == nil {
		doc.Layouts = map[string]interface{}{}
	}

	data, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}

	m.mu.Lock()
	err = os.WriteFile(m.path(doc.ProjectID), data, 0o644)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write layout: %w", err)
	}

	m.documents.Store(doc.ProjectID, doc)
	return nil
}

// Get returns the stored document for a project. An unknown project
// yields an empty document, not an error.
func (m *Manager) Get(projectID string) (*Document, error) {
	if cached, ok := m.documents.Load(projectID); ok {
		return cached.(*Document), nil
	}

	data, err := os.ReadFile(m.path(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{ProjectID: projectID, Layouts: map[string]interface{}{}}, nil
		}
		return nil, fmt.Errorf("read layout: %w", err)
	}

	var doc Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal layout %s: %w", projectID, err)
	}
	m.documents.Store(projectID, &doc)
	return &doc, nil
}

// Delete removes a project's document. Deleting an unknown project is a
// no-op.
func (m *Manager) Delete(projectID string) error {
	m.mu.Lock()
	err := os.Remove(m.path(projectID))
	m.mu.Unlock()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete layout: %w", err)
	}
	m.documents.Delete(projectID)
	return nil
}

// List returns every stored project id
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

func (m *Manager) path(projectID string) string {
	// Project ids are opaque but must stay a single path element
	safe := strings.ReplaceAll(projectID, string(os.PathSeparator), "_")
	return filepath.Join(m.dir, safe+".json")
}
