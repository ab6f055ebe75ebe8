// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"devflink/internal/models"
)

// header is the frontmatter as decoded. Pointer fields tell an absent key
// apart from an empty one; meta fills the gaps from the default table.
type header struct {
	Title    *string    `yaml:"title"`
	Excerpt  *string    `yaml:"excerpt"`
	Date     *string    `yaml:"date"`
	Author   *string    `yaml:"author"`
	Category *string    `yaml:"category"`
	Tags     stringList `yaml:"tags"`
	Featured *bool      `yaml:"featured"`
	ReadTime *string    `yaml:"readTime"`
	Image    *string    `yaml:"image"`
}

// fileHeader is the frontmatter as written.
type fileHeader struct {
	Title    string   `yaml:"title"`
	Excerpt  string   `yaml:"excerpt"`
	Date     string   `yaml:"date"`
	Author   string   `yaml:"author"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Featured bool     `yaml:"featured"`
	Image    string   `yaml:"image,omitempty"`
	ReadTime string   `yaml:"readTime"`
}

func (h header) meta(slug string, now time.Time) Meta {
	m := Meta{
		Slug:     slug,
		Title:    str(h.Title, ""),
		Excerpt:  str(h.Excerpt, ""),
		Date:     now.UTC(),
		Author:   str(h.Author, DefaultAuthor),
		Category: str(h.Category, models.DefaultCategory),
		Tags:     models.NormalizeTags(h.Tags),
		Image:    str(h.Image, ""),
		ReadTime: str(h.ReadTime, models.DefaultReadTime),
	}
	if h.Date != nil {
		m.Date = parseDate(*h.Date, m.Date)
	}
	if h.Featured != nil {
		m.Featured = *h.Featured
	}
	return m
}

// str returns *p, or fallback when the key is absent or blank.
func str(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate reads a header date in any of the accepted layouts. Dates that
// match none of them are replaced by fallback.
func parseDate(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return fallback
}

// stringList decodes either a YAML sequence or a single comma-separated
// scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = strings.Split(value.Value, ",")
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		*l = items
		return nil
	}
	return fmt.Errorf("tags: expected a list or a string")
}
