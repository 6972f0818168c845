package composer

import (
	"sync"
	"time"
)

// Repository defines the concurrency-safe contract for persisting projects.
type Repository interface {
	// SaveProject stores a snapshot of the project, stamping UpdatedAt, and
	// returns the stored record. Failures are returned as-is; retrying is up
	// to the caller.
	SaveProject(p Project) (Project, error)

	// GetProject returns the stored project. ok is false when it does not exist.
	GetProject(id ProjectID) (p Project, ok bool, err error)

	// DeleteProject removes a stored project. Deleting a missing project is a
	// no-op.
	DeleteProject(id ProjectID) error

	// ProjectCount returns the number of stored projects. Used for metrics.
	ProjectCount() int
}

// StoreRepository is a concurrency-safe Repository over a Store.
type StoreRepository struct {
	mu    sync.RWMutex
	store Store
	now   func() time.Time
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *StoreRepository {
	return NewRepositoryWithStore(NewInMemoryStore())
}

// NewRepositoryWithStore constructs a repository that uses the given Store.
// Useful for testing or for plugging in a different persistence backend.
func NewRepositoryWithStore(store Store) *StoreRepository {
	return &StoreRepository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// SaveProject implements Repository.SaveProject.
func (r *StoreRepository) SaveProject(p Project) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p = copyProject(p)
	p.UpdatedAt = r.now()
	if err := r.store.SetProject(&p); err != nil {
		return Project{}, err
	}
	return copyProject(p), nil
}

// GetProject implements Repository.GetProject.
func (r *StoreRepository) GetProject(id ProjectID) (Project, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok, err := r.store.GetProject(id)
	if err != nil || !ok {
		return Project{}, false, err
	}
	// Copy so callers never alias stored state.
	return copyProject(*p), true, nil
}

// DeleteProject implements Repository.DeleteProject.
func (r *StoreRepository) DeleteProject(id ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.DeleteProject(id)
}

// ProjectCount implements Repository.ProjectCount.
func (r *StoreRepository) ProjectCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, err := r.store.ListProjectIDs()
	if err != nil {
		return 0
	}
	return len(ids)
}

func copyProject(p Project) Project {
	out := p
	out.Segments = make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		out.Segments[i] = s.clone()
	}
	out.Overlays = append([]Overlay(nil), p.Overlays...)
	out.Global.DigitalHumans = append([]DigitalHuman(nil), p.Global.DigitalHumans...)
	if p.Global.Audio != nil {
		out.Global.Audio = p.Global.Audio.clone()
	}
	return out
}
