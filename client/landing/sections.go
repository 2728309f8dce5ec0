// Package landing edits and previews a tenant landing page: an ordered list of
// typed sections, three theme colors and social links.
package landing

import (
	"encoding/json"
	"fmt"
	"strings"

	"incubator/portal/client/api"
)

// SectionTypes lists every section kind in menu order.
var SectionTypes = []api.SectionType{
	api.SectionHero,
	api.SectionAbout,
	api.SectionContact,
	api.SectionProjects,
	api.SectionTestimonials,
	api.SectionTeam,
	api.SectionFAQ,
	api.SectionGallery,
	api.SectionCustom,
}

var defaultContent = map[api.SectionType]string{
	api.SectionHero:         `{"title":"Welcome","subtitle":"","backgroundImage":"","ctaText":"","ctaLink":""}`,
	api.SectionAbout:        `{"title":"About us","content":"","image":""}`,
	api.SectionContact:      `{"title":"Contact","email":"","phone":"","address":""}`,
	api.SectionProjects:     `{"title":"Projects","projects":[{"name":"","description":"","image":"","link":""}]}`,
	api.SectionTestimonials: `{"title":"Testimonials","testimonials":[{"author":"","role":"","quote":"","avatar":""}]}`,
	api.SectionTeam:         `{"title":"Our team","members":[{"name":"","role":"","photo":"","bio":""}]}`,
	api.SectionFAQ:          `{"title":"FAQ","questions":[{"question":"","answer":""}]}`,
	api.SectionGallery:      `{"title":"Gallery","images":[]}`,
	api.SectionCustom:       `{"title":"","content":""}`,
}

// ParseSectionType accepts any case.
func ParseSectionType(s string) (api.SectionType, error) {
	for _, t := range SectionTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown section type %q", s)
}

// DefaultContent returns the skeleton content of a section type. Unknown types
// get an empty object.
func DefaultContent(t api.SectionType) string {
	if c, ok := defaultContent[t]; ok {
		return c
	}
	return "{}"
}

// decodeContent parses a section's content, which must be a JSON object.
func decodeContent(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return map[string]interface{}{}, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("section content must be a JSON object: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("section content must be a JSON object")
	}
	return obj, nil
}
