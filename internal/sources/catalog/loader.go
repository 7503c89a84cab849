package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

// Loader reads the service catalog from disk.
type Loader struct {
	filePath string
	mapper   *Mapper
}

// NewLoader creates a loader for the given file.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		mapper:   NewMapper(),
	}
}

// Path returns the catalog file path.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and parses the catalog file.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read services file: %w", err)
	}
	return Parse(data)
}

// Services loads, validates and maps the catalog in one step.
func (l *Loader) Services() (Catalog, error) {
	f, err := l.Load()
	if err != nil {
		return Catalog{}, err
	}
	return l.mapper.MapServices(f)
}

// Parse decodes a catalog document. Unknown keys are ignored.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse services file: %w", err)
	}
	return f, nil
}

// Catalog is a validated list of services plus non-fatal findings.
type Catalog struct {
	Services []domain.ServiceConfig
	Warnings []string
}
