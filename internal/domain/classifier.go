package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Hint tables are plain substrings matched against normalized text.
// They are checked in this order; the first table with a hit wins.
var (
	operationalHints = normalizeHints(
		"all systems operational",
		"all systems are operational",
		"tous les systemes fonctionnent",
		"tous les systèmes fonctionnent",
		"operationnel",
		"operationnels",
		"operational",
		"no incidents reported",
		"no incidents or maintenance reported",
		"aucun incident signale",
	)

	degradedHints = normalizeHints(
		"partial outage",
		"degrad",
		"minor issue",
		"maintenance",
		"maintenance planifiee",
		"maintenance en cours",
		"degraded performance",
		"planned maintenance",
	)

	downHints = normalizeHints(
		"major outage",
		"major incident",
		"critical",
		"incident critique",
		"panne",
		"interruption",
		"service disruption",
	)
)

var titlePattern = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)

type hintRule struct {
	hints  []string
	status Status
	label  string
}

var hintRules = []hintRule{
	{hints: operationalHints, status: StatusOperational, label: "operational"},
	{hints: degradedHints, status: StatusDegraded, label: "maintenance/degradation"},
	{hints: downHints, status: StatusDown, label: "incident/critical"},
}

// ClassifyText infers a canonical status from an HTML or plain-text page.
//
// With titlePriority, the first <h1> element is classified on its own and
// wins when any hint matches it. Otherwise, or when the title is silent, the
// whole page is matched. No match yields StatusUnknown.
func ClassifyText(text string, titlePriority bool) Classification {
	if titlePriority {
		if m := titlePattern.FindStringSubmatch(text); m != nil {
			if rule, ok := matchHints(normalizeText(m[1])); ok {
				return Classification{
					Status:  rule.status,
					Details: "status taken from page title (" + rule.label + ")",
				}
			}
		}
	}

	if rule, ok := matchHints(normalizeText(text)); ok {
		return Classification{
			Status:  rule.status,
			Details: "status taken from page HTML (" + rule.label + ")",
		}
	}

	return Classification{
		Status:  StatusUnknown,
		Details: "page status could not be determined from HTML",
	}
}

func matchHints(haystack string) (hintRule, bool) {
	for _, rule := range hintRules {
		for _, hint := range rule.hints {
			if strings.Contains(haystack, hint) {
				return rule, true
			}
		}
	}
	return hintRule{}, false
}

// normalizeText lowercases text and collapses whitespace runs to one space.
// NFC keeps precomposed and decomposed accents comparable.
func normalizeText(text string) string {
	text = strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return b.String()
}

func normalizeHints(hints ...string) []string {
	out := make([]string, len(hints))
	for i, h := range hints {
		out[i] = normalizeText(h)
	}
	return out
}

// DefaultTitlePriorityNames are brands whose full status page text is known
// to produce false positives.
var DefaultTitlePriorityNames = []string{"doofinder", "sogecommerce", "lyra"}

// TitlePriorityList selects services classified in title-priority mode.
type TitlePriorityList []string

// Match reports whether a service name contains one of the listed brands,
// ignoring case.
func (l TitlePriorityList) Match(name string) bool {
	name = strings.ToLower(name)
	for _, brand := range l {
		brand = strings.ToLower(strings.TrimSpace(brand))
		if brand != "" && strings.Contains(name, brand) {
			return true
		}
	}
	return false
}
