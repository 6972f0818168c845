package composer

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EncodeProject renders a project as YAML.
func EncodeProject(p *Project) ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// DecodeProject parses a YAML project document.
func DecodeProject(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.WithStack(err)
	}
	return &p, nil
}

// WriteProjectFile writes p to path as YAML.
func WriteProjectFile(p *Project, path string) error {
	data, err := EncodeProject(p)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

// ReadProjectFile reads a YAML project from path.
func ReadProjectFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return DecodeProject(data)
}
