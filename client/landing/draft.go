package landing

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"incubator/portal/client/api"
)

var ErrSectionIndex = errors.New("landing: section index out of range")

// Draft is the local, unsaved copy of a landing page.
type Draft struct {
	ThemeColor  string
	ThemeColor2 string
	ThemeColor3 string
	Sections    []api.Section
	SocialLinks map[string]string
}

// NewDraft copies page so edits never alias the caller's slices.
func NewDraft(page api.LandingPage) *Draft {
	d := &Draft{
		ThemeColor:  page.ThemeColor,
		ThemeColor2: page.ThemeColor2,
		ThemeColor3: page.ThemeColor3,
		Sections:    append([]api.Section(nil), page.Sections...),
		SocialLinks: make(map[string]string, len(page.SocialLinks)),
	}
	sort.SliceStable(d.Sections, func(i, j int) bool {
		return d.Sections[i].SectionOrder < d.Sections[j].SectionOrder
	})
	d.renumber()
	for k, v := range page.SocialLinks {
		d.SocialLinks[k] = v
	}
	return d
}

func (d *Draft) check(i int) error {
	if i < 0 || i >= len(d.Sections) {
		return fmt.Errorf("%w: %d", ErrSectionIndex, i)
	}
	return nil
}

// find returns the index of the section equal to s, preferring hint. It
// returns -1 when no section or more than one other section matches.
func (d *Draft) find(s api.Section, hint int) int {
	if hint >= 0 && hint < len(d.Sections) && sameSection(d.Sections[hint], s) {
		return hint
	}
	found := -1
	for j, cur := range d.Sections {
		if !sameSection(cur, s) {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = j
	}
	return found
}

func sameSection(a, b api.Section) bool {
	if (a.ID == nil) != (b.ID == nil) || (a.ID != nil && *a.ID != *b.ID) {
		return false
	}
	return a.Type == b.Type && a.ContentJSON == b.ContentJSON
}

// Add appends a section of type t with its default content and returns its index.
func (d *Draft) Add(t api.SectionType) int {
	d.Sections = append(d.Sections, api.Section{
		Type:         t,
		ContentJSON:  DefaultContent(t),
		SectionOrder: len(d.Sections),
	})
	return len(d.Sections) - 1
}

func (d *Draft) Remove(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
	d.renumber()
	return nil
}

// MoveUp swaps section i with its predecessor. Moving the first section is a no-op.
func (d *Draft) MoveUp(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	d.swap(i, i-1)
	return nil
}

// MoveDown swaps section i with its successor. Moving the last section is a no-op.
func (d *Draft) MoveDown(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	if i == len(d.Sections)-1 {
		return nil
	}
	d.swap(i, i+1)
	return nil
}

// Move removes section from and reinserts it at to.
func (d *Draft) Move(from, to int) error {
	if err := d.check(from); err != nil {
		return err
	}
	if err := d.check(to); err != nil {
		return err
	}
	s := d.Sections[from]
	d.Sections = append(d.Sections[:from], d.Sections[from+1:]...)
	d.Sections = append(d.Sections[:to], append([]api.Section{s}, d.Sections[to:]...)...)
	d.renumber()
	return nil
}

func (d *Draft) swap(i, j int) {
	d.Sections[i], d.Sections[j] = d.Sections[j], d.Sections[i]
	d.renumber()
}

func (d *Draft) renumber() {
	for i := range d.Sections {
		d.Sections[i].SectionOrder = i
	}
}

// SetTheme replaces the three theme colors. Empty values keep the current color.
func (d *Draft) SetTheme(primary, secondary, accent string) {
	if primary != "" {
		d.ThemeColor = primary
	}
	if secondary != "" {
		d.ThemeColor2 = secondary
	}
	if accent != "" {
		d.ThemeColor3 = accent
	}
}

// SetSocialLink sets the URL of a network; an empty URL removes it.
func (d *Draft) SetSocialLink(network, url string) {
	network = strings.TrimSpace(network)
	if network == "" {
		return
	}
	if d.SocialLinks == nil {
		d.SocialLinks = map[string]string{}
	}
	if strings.TrimSpace(url) == "" {
		delete(d.SocialLinks, network)
		return
	}
	d.SocialLinks[network] = strings.TrimSpace(url)
}

// UpdateContent replaces the content of section i. raw must be a JSON object;
// on error the section is unchanged.
func (d *Draft) UpdateContent(i int, raw string) error {
	if err := d.check(i); err != nil {
		return err
	}
	if _, err := decodeContent(raw); err != nil {
		return err
	}
	d.Sections[i].ContentJSON = raw
	return nil
}

// SetField stores value at a dotted path inside section i's content, e.g.
// "backgroundImage" or "members.0.photo". Missing objects along the path are
// created; array indexes must exist or equal the array length (append).
func (d *Draft) SetField(i int, path string, value interface{}) error {
	if err := d.check(i); err != nil {
		return err
	}
	content, err := decodeContent(d.Sections[i].ContentJSON)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("empty field path")
	}
	updated, err := setPath(content, strings.Split(path, "."), value)
	if err != nil {
		return fmt.Errorf("field %q: %w", path, err)
	}
	raw, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	d.Sections[i].ContentJSON = string(raw)
	return nil
}

func setPath(node interface{}, keys []string, value interface{}) (interface{}, error) {
	if len(keys) == 0 {
		return value, nil
	}
	key, rest := keys[0], keys[1:]

	switch n := node.(type) {
	case map[string]interface{}:
		child, err := setPath(n[key], rest, value)
		if err != nil {
			return nil, err
		}
		n[key] = child
		return n, nil
	case []interface{}:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx > len(n) {
			return nil, fmt.Errorf("invalid array index %q", key)
		}
		if idx == len(n) {
			n = append(n, nil)
		}
		child, err := setPath(n[idx], rest, value)
		if err != nil {
			return nil, err
		}
		n[idx] = child
		return n, nil
	case nil:
		return setPath(map[string]interface{}{}, keys, value)
	default:
		return nil, fmt.Errorf("cannot descend into %T at %q", node, key)
	}
}

// Page returns the draft as a landing page with sectionOrder equal to position.
func (d *Draft) Page() api.LandingPage {
	sections := append([]api.Section(nil), d.Sections...)
	for i := range sections {
		sections[i].SectionOrder = i
	}
	links := make(map[string]string, len(d.SocialLinks))
	for k, v := range d.SocialLinks {
		links[k] = v
	}
	return api.LandingPage{
		ThemeColor:  d.ThemeColor,
		ThemeColor2: d.ThemeColor2,
		ThemeColor3: d.ThemeColor3,
		Sections:    sections,
		SocialLinks: links,
	}
}
