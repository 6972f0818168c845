package composer

import (
	"sync"

	"github.com/google/uuid"
)

// Service keeps the open authoring sessions, resolves materials through the
// catalog and persists projects through the repository.
type Service struct {
	mu       sync.Mutex
	repo     Repository
	catalog  MaterialCatalog
	opts     SessionOptions
	sessions map[ProjectID]*Session
}

// NewService returns a Service. A nil catalog is an empty catalog; a zero
// controller selects DefaultController.
func NewService(repo Repository, catalog MaterialCatalog, controller Owner) *Service {
	if catalog == nil {
		catalog = NewInMemoryCatalog()
	}
	if controller == (Owner{}) {
		controller = DefaultController
	}
	return &Service{
		repo:     repo,
		catalog:  catalog,
		opts:     SessionOptions{Catalog: catalog, Controller: controller},
		sessions: make(map[ProjectID]*Session),
	}
}

// Catalog returns the material catalog.
func (s *Service) Catalog() MaterialCatalog {
	return s.catalog
}

// CreateProject opens a new, empty, unsaved project.
func (s *Service) CreateProject(name string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ProjectID(uuid.NewString())
	sess := NewSession(id, name, s.opts)
	s.sessions[id] = sess
	return sess
}

// Open returns the open session for id, loading it from the repository on
// first use.
func (s *Service) Open(id ProjectID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	p, ok, err := s.repo.GetProject(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProjectNotFound
	}
	sess := RestoreSession(p, s.opts)
	s.sessions[id] = sess
	return sess, nil
}

// Import opens a session from a project record (e.g. a YAML export) under its
// own id, replacing any open session with that id.
func (s *Service) Import(p Project) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = ProjectID(uuid.NewString())
	}
	sess := RestoreSession(p, s.opts)
	s.sessions[p.ID] = sess
	return sess
}

// Save persists the session's current state. It does not retry.
func (s *Service) Save(id ProjectID) (Project, error) {
	sess, err := s.Open(id)
	if err != nil {
		return Project{}, err
	}
	return s.repo.SaveProject(sess.Snapshot())
}

// Export renders the session's current state as YAML.
func (s *Service) Export(id ProjectID) ([]byte, error) {
	sess, err := s.Open(id)
	if err != nil {
		return nil, err
	}
	p := sess.Snapshot()
	return EncodeProject(&p)
}

// Close drops the open session without saving.
func (s *Service) Close(id ProjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Delete closes the session and removes the stored project.
func (s *Service) Delete(id ProjectID) error {
	s.Close(id)
	return s.repo.DeleteProject(id)
}

// OpenCount returns the number of open sessions. Used for metrics.
func (s *Service) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
