package domain

import "time"

// SourceType tags the variant of a service status source.
type SourceType string

const (
	SourceStatuspage SourceType = "statuspage"
	SourceHTML       SourceType = "html"
	SourceNone       SourceType = "none"
)

// Known reports whether t is one of the declared source variants.
func (t SourceType) Known() bool {
	return t == SourceStatuspage || t == SourceHTML || t == SourceNone
}

// Source describes where the status of a service can be read from.
//
// A statuspage source may also carry HTMLURL / HTMLFallback to permit
// scraping as a secondary path.
type Source struct {
	Type          SourceType
	API           string
	APICandidates []string
	HTMLURL       string
	HTMLFallback  bool
}

// ServiceConfig is one entry of the service catalog.
//
// It is supplied externally and treated as read-only for the duration of a
// resolution cycle. Name is unique: it keys the status cache and breaks sort
// ties.
type ServiceConfig struct {
	Name        string
	Description string
	StatusURL   string
	Notes       string

	Source Source

	// FallbackStatus is reported when every live path fails.
	// Empty means unknown.
	FallbackStatus Status
}

// Capabilities is the set of resolution paths a service declares.
type Capabilities struct {
	HasStructuredSource bool
	HasHTMLSource       bool
	AllowsFallback      bool
}

// Fallback returns the status reported when all live sources fail.
func (s ServiceConfig) Fallback() Status {
	if s.FallbackStatus.Valid() {
		return s.FallbackStatus
	}
	return StatusUnknown
}

// HTMLTarget returns the page to scrape: the dedicated HTML URL when set,
// otherwise the public status URL.
func (s ServiceConfig) HTMLTarget() string {
	if s.Source.HTMLURL != "" {
		return s.Source.HTMLURL
	}
	return s.StatusURL
}

// Capabilities derives the resolution paths from the source variant.
func (s ServiceConfig) Capabilities() Capabilities {
	target := s.HTMLTarget()

	switch s.Source.Type {
	case SourceStatuspage:
		if s.Source.API == "" {
			return Capabilities{}
		}
		return Capabilities{
			HasStructuredSource: true,
			HasHTMLSource:       target != "",
			AllowsFallback:      s.Source.HTMLFallback || s.Source.HTMLURL != "",
		}
	case SourceHTML:
		return Capabilities{HasHTMLSource: target != ""}
	default:
		return Capabilities{}
	}
}

// ResolvedVia records which path produced a ResolutionResult.
type ResolvedVia string

const (
	ViaAPI       ResolvedVia = "api"
	ViaCache     ResolvedVia = "cache"
	ViaHTML      ResolvedVia = "html"
	ViaFallback  ResolvedVia = "fallback"
	ViaUnsourced ResolvedVia = "unsourced"
)

// ResolutionResult is the resolved status of one service.
// StatusDetails is a provenance trail and is never empty.
type ResolutionResult struct {
	Name          string      `json:"name"`
	StatusURL     string      `json:"statusUrl"`
	Description   string      `json:"description"`
	Notes         string      `json:"notes"`
	Status        Status      `json:"status"`
	StatusDetails string      `json:"statusDetails"`
	ResolvedVia   ResolvedVia `json:"resolvedVia"`
}

// NewResult copies the display fields of a service into an empty result.
func NewResult(svc ServiceConfig) ResolutionResult {
	return ResolutionResult{
		Name:        svc.Name,
		StatusURL:   svc.StatusURL,
		Description: svc.Description,
		Notes:       svc.Notes,
	}
}

// CacheEntry is the last known good status of a service.
// Entries never expire; staleness is surfaced through CachedAt.
type CacheEntry struct {
	Status        Status    `json:"status"`
	StatusDetails string    `json:"statusDetails"`
	CachedAt      time.Time `json:"cachedAt"`
}

// Classification is the outcome of a single source: a status and why.
type Classification struct {
	Status  Status
	Details string
}
