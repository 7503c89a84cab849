package catalog

// File is the top-level structure of services.json (or services.yaml).
// JSON is valid YAML, so both are read by the same decoder.
type File struct {
	Services []ServiceProps `yaml:"services"`
}

// ServiceProps is one entry of the catalog.
type ServiceProps struct {
	Name           string      `yaml:"name"`
	Description    string      `yaml:"description,omitempty"`
	StatusURL      string      `yaml:"statusUrl,omitempty"`
	Notes          string      `yaml:"notes,omitempty"`
	FallbackStatus string      `yaml:"fallbackStatus,omitempty"`
	Source         SourceProps `yaml:"source,omitempty"`
}

// SourceProps mirrors the tagged source object.
type SourceProps struct {
	Type          string    `yaml:"type"`
	API           string    `yaml:"api,omitempty"`
	APICandidates []string  `yaml:"apiCandidates,omitempty"`
	HTML          HTMLProps `yaml:"html,omitempty"`
	HTMLFallback  bool      `yaml:"htmlFallback,omitempty"`
}

type HTMLProps struct {
	URL string `yaml:"url,omitempty"`
}
