package landing

import (
	"fmt"
	"sort"
	"strings"

	"incubator/portal/client/api"
)

// Render returns a plain-text preview of page, sections top to bottom in
// sectionOrder.
func Render(page api.LandingPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Theme: %s / %s / %s\n", orDash(page.ThemeColor), orDash(page.ThemeColor2), orDash(page.ThemeColor3))

	sections := append([]api.Section(nil), page.Sections...)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].SectionOrder < sections[j].SectionOrder })

	for i, s := range sections {
		content, err := decodeContent(s.ContentJSON)
		if err != nil {
			fmt.Fprintf(&b, "\n[%d] %s (invalid content)\n", i+1, s.Type)
			continue
		}
		title, _ := content["title"].(string)
		fmt.Fprintf(&b, "\n[%d] %s", i+1, s.Type)
		if title != "" {
			fmt.Fprintf(&b, ": %s", title)
		}
		b.WriteString("\n")
		renderFields(&b, content, "    ")
	}

	if len(page.SocialLinks) > 0 {
		b.WriteString("\nLinks:\n")
		networks := make([]string, 0, len(page.SocialLinks))
		for k := range page.SocialLinks {
			networks = append(networks, k)
		}
		sort.Strings(networks)
		for _, k := range networks {
			fmt.Fprintf(&b, "    %s: %s\n", k, page.SocialLinks[k])
		}
	}
	return b.String()
}

func renderFields(b *strings.Builder, content map[string]interface{}, indent string) {
	keys := make([]string, 0, len(content))
	for k := range content {
		if k != "title" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := content[k].(type) {
		case string:
			if v != "" {
				fmt.Fprintf(b, "%s%s: %s\n", indent, k, v)
			}
		case []interface{}:
			fmt.Fprintf(b, "%s%s: %d item(s)\n", indent, k, len(v))
			for _, item := range v {
				switch it := item.(type) {
				case map[string]interface{}:
					renderFields(b, it, indent+"  - ")
				case string:
					fmt.Fprintf(b, "%s  - %s\n", indent, it)
				}
			}
		case nil:
		default:
			fmt.Fprintf(b, "%s%s: %v\n", indent, k, v)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
