package specs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/petasbytes/dimensional-agent/internal/fsops"
)

// Input file locations relative to a model directory.
const (
	SchemaFile  = "inputs/schema.json"
	MetricsFile = "inputs/metrics.json"
)

// DefaultModelsDir is the models root used when none is configured.
const DefaultModelsDir = "models"

// Model is the validated input of one dimensional-modeling run.
type Model struct {
	Name    string
	Schema  RawSchemaSpecs
	Metrics MetricsSpecs
}

// Loader reads model inputs from a sandboxed models root.
type Loader struct {
	fs *fsops.Sandbox
}

func NewLoader(root string) (*Loader, error) {
	if root == "" {
		root = DefaultModelsDir
	}
	sb, err := fsops.New(root)
	if err != nil {
		return nil, err
	}
	return &Loader{fs: sb}, nil
}

// Sandbox exposes the underlying sandbox so outputs land next to the inputs.
func (l *Loader) Sandbox() *fsops.Sandbox { return l.fs }

// Load reads <root>/<name>/inputs/schema.json and metrics.json.
// Missing files match ErrNotFound, decode or validation failures ErrValidation.
func (l *Loader) Load(name string) (Model, error) {
	if name == "" {
		return Model{}, fmt.Errorf("load model: %w", invalid("model", "name must not be empty"))
	}
	var m Model
	m.Name = name
	if err := l.readInto(path.Join(name, SchemaFile), &m.Schema); err != nil {
		return Model{}, fmt.Errorf("load model %q: %w", name, err)
	}
	if err := l.readInto(path.Join(name, MetricsFile), &m.Metrics); err != nil {
		return Model{}, fmt.Errorf("load model %q: %w", name, err)
	}
	return m, nil
}

// List returns the model directories under the root.
func (l *Loader) List() ([]string, error) {
	return l.fs.ListDirs("")
}

func (l *Loader) readInto(rel string, v json.Unmarshaler) error {
	b, err := l.fs.ReadFile(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return fmt.Errorf("%s: %w", rel, err)
	}
	if err := v.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%s: %w", rel, err)
	}
	return nil
}

// LoadModel is a convenience wrapper around NewLoader and Load.
func LoadModel(root, name string) (Model, error) {
	l, err := NewLoader(root)
	if err != nil {
		return Model{}, err
	}
	return l.Load(name)
}
