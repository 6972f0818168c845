package composer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store is the persistence abstraction for project records.
// Implementations can be in-memory, file-based, or remote.
// The Repository uses Store for all reads and writes; callers of Repository
// do not need to know which Store is used.
type Store interface {
	GetProject(id ProjectID) (*Project, bool, error)
	SetProject(p *Project) error
	DeleteProject(id ProjectID) error
	ListProjectIDs() ([]ProjectID, error)
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	projects map[ProjectID]*Project
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		projects: make(map[ProjectID]*Project),
	}
}

// GetProject implements Store.GetProject.
func (s *InMemoryStore) GetProject(id ProjectID) (*Project, bool, error) {
	p, ok := s.projects[id]
	return p, ok, nil
}

// SetProject implements Store.SetProject.
func (s *InMemoryStore) SetProject(p *Project) error {
	s.projects[p.ID] = p
	return nil
}

// DeleteProject implements Store.DeleteProject.
func (s *InMemoryStore) DeleteProject(id ProjectID) error {
	delete(s.projects, id)
	return nil
}

// ListProjectIDs implements Store.ListProjectIDs.
func (s *InMemoryStore) ListProjectIDs() ([]ProjectID, error) {
	ids := make([]ProjectID, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	return ids, nil
}

const projectFileExt = ".yaml"

// FileStore keeps one YAML document per project in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create project dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id ProjectID) string {
	return filepath.Join(s.dir, filepath.Base(string(id))+projectFileExt)
}

// GetProject implements Store.GetProject.
func (s *FileStore) GetProject(id ProjectID) (*Project, bool, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read project %s", id)
	}
	p, err := DecodeProject(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decode project %s", id)
	}
	return p, true, nil
}

// SetProject implements Store.SetProject. The document is written to a
// temporary file and renamed into place.
func (s *FileStore) SetProject(p *Project) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrapf(err, "encode project %s", p.ID)
	}
	tmp := s.path(p.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write project %s", p.ID)
	}
	if err := os.Rename(tmp, s.path(p.ID)); err != nil {
		return errors.Wrapf(err, "commit project %s", p.ID)
	}
	return nil
}

// DeleteProject implements Store.DeleteProject.
func (s *FileStore) DeleteProject(id ProjectID) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete project %s", id)
	}
	return nil
}

// ListProjectIDs implements Store.ListProjectIDs.
func (s *FileStore) ListProjectIDs() ([]ProjectID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list project dir %s", s.dir)
	}
	var ids []ProjectID
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), projectFileExt) {
			continue
		}
		ids = append(ids, ProjectID(strings.TrimSuffix(e.Name(), projectFileExt)))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
