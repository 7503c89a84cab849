package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
)

// Mapper converts catalog entries to domain.ServiceConfig values.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapServices validates the file and maps every entry. Missing or duplicate
// names and invalid fallback statuses are errors; sources that can never
// answer are reported as warnings and resolve through their fallback.
func (m *Mapper) MapServices(f File) (Catalog, error) {
	var (
		out   Catalog
		errs  []error
		names = make(map[string]int, len(f.Services))
	)

	for i, p := range f.Services {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("services[%d]: name is required", i))
			continue
		}
		if prev, ok := names[name]; ok {
			errs = append(errs, fmt.Errorf("services[%d]: duplicate name %q (first at services[%d])", i, name, prev))
			continue
		}
		names[name] = i

		fallback, err := domain.ParseStatus(p.FallbackStatus)
		if err != nil {
			errs = append(errs, fmt.Errorf("services[%d] %q: %w", i, name, err))
			continue
		}

		svc := domain.ServiceConfig{
			Name:           name,
			Description:    p.Description,
			StatusURL:      strings.TrimSpace(p.StatusURL),
			Notes:          p.Notes,
			FallbackStatus: fallback,
			Source: domain.Source{
				Type:          domain.SourceType(strings.TrimSpace(p.Source.Type)),
				API:           strings.TrimSpace(p.Source.API),
				APICandidates: p.Source.APICandidates,
				HTMLURL:       strings.TrimSpace(p.Source.HTML.URL),
				HTMLFallback:  p.Source.HTMLFallback,
			},
		}

		if w := sourceWarning(svc); w != "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %s", name, w))
		}
		out.Services = append(out.Services, svc)
	}

	if err := errors.Join(errs...); err != nil {
		return Catalog{}, fmt.Errorf("invalid services file: %w", err)
	}
	return out, nil
}

func sourceWarning(svc domain.ServiceConfig) string {
	switch svc.Source.Type {
	case domain.SourceStatuspage:
		if svc.Source.API == "" {
			return "statuspage source without api, fallback status will be used"
		}
	case domain.SourceHTML:
		if svc.HTMLTarget() == "" {
			return "html source without url or statusUrl, fallback status will be used"
		}
	case domain.SourceNone:
	case "":
		return "no source type, fallback status will be used"
	default:
		return fmt.Sprintf("unknown source type %q, fallback status will be used", svc.Source.Type)
	}
	return ""
}
