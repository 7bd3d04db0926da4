package docs

import (
	"fmt"
	"sync"
)

// Manager tracks the set of open documents by identifier.
type Manager struct {
	docs map[string]*Document
	mu   sync.RWMutex
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{docs: make(map[string]*Document)}
}

// Open registers a document. Opening an already-open identifier is an
// error; the existing document is returned alongside it.
func (m *Manager) Open(id, content string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc, exists := m.docs[id]; exists {
		return doc, fmt.Errorf("document already open: %s", id)
	}

	doc := NewDocument(id, content)
	m.docs[id] = doc
	return doc, nil
}

// Get looks up an open document.
func (m *Manager) Get(id string) (*Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[id]
	return doc, exists
}

// Close removes a document from the open set.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[id]; !exists {
		return fmt.Errorf("document not found: %s", id)
	}
	delete(m.docs, id)
	return nil
}

// CloseAll drops every open document.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]*Document)
}
