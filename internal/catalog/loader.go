package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"gopkg.in/yaml.v3"
)

// CatalogFile is the name of the catalog inside its filesystem
const CatalogFile = "topics.yaml"

//go:embed topics.yaml
var builtin embed.FS

// File represents the YAML structure of the topic catalog
type File struct {
	Topics []TopicFile `yaml:"topics"`
}

// TopicFile represents the YAML structure of one topic
type TopicFile struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Modes       []string `yaml:"modes"`
	DefaultMode string   `yaml:"default_mode"`
	Subtypes    []string `yaml:"subtypes"`
	Tags        []string `yaml:"tags"`
}

// Loader reads topic definitions from a filesystem
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader over the embedded catalog
func NewLoader() *Loader {
	return &Loader{fsys: builtin}
}

// NewDirLoader creates a loader reading topics.yaml from dir
func NewDirLoader(dir string) *Loader {
	return &Loader{fsys: os.DirFS(dir)}
}

// NewFSLoader creates a loader over an arbitrary filesystem
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadAll parses the catalog and validates every entry
func (l *Loader) LoadAll() ([]*domain.Topic, error) {
	data, err := fs.ReadFile(l.fsys, CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	seen := make(map[string]bool, len(file.Topics))
	topics := make([]*domain.Topic, 0, len(file.Topics))
	for i, tf := range file.Topics {
		t, err := tf.toDomain()
		if err != nil {
			return nil, fmt.Errorf("topic %d: %w", i, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("topic %s: duplicate id: %w", t.ID, domain.ErrInvalidInput)
		}
		seen[t.ID] = true
		topics = append(topics, t)
	}
	return topics, nil
}

func (tf TopicFile) toDomain() (*domain.Topic, error) {
	if tf.ID == "" {
		return nil, fmt.Errorf("missing id: %w", domain.ErrInvalidInput)
	}
	if len(tf.Modes) == 0 {
		return nil, fmt.Errorf("%s: no modes: %w", tf.ID, domain.ErrInvalidInput)
	}

	t := &domain.Topic{
		ID:          tf.ID,
		Title:       tf.Title,
		Description: tf.Description,
		Modes:       tf.Modes,
		DefaultMode: tf.DefaultMode,
		Subtypes:    tf.Subtypes,
		Tags:        tf.Tags,
	}
	if t.DefaultMode == "" {
		t.DefaultMode = t.Modes[0]
	}
	if !t.HasMode(t.DefaultMode) {
		return nil, fmt.Errorf("%s: default mode %q not listed: %w", tf.ID, t.DefaultMode, domain.ErrUnknownMode)
	}
	return t, nil
}
