// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content reads and writes long-form articles stored as Markdown
// files with a YAML frontmatter header, one file per article named
// <slug>.md. Nothing is cached: every call goes back to the filesystem, so
// edits made outside the server show up on the next request.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"devflink/internal/errs"
	"devflink/internal/fsutil"
	"devflink/internal/markdown"
	"devflink/internal/models"
	"devflink/internal/slug"
)

const (
	ext      = ".md"
	filePerm = 0o644

	// DefaultAuthor is credited on articles whose header names nobody.
	DefaultAuthor = "Dev Flink Team"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Meta is an article's header, with defaults applied.
type Meta struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Excerpt  string    `json:"excerpt"`
	Date     time.Time `json:"date"`
	Author   string    `json:"author"`
	Category string    `json:"category"`
	Tags     []string  `json:"tags"`
	Featured bool      `json:"featured"`
	Image    string    `json:"image,omitempty"`
	ReadTime string    `json:"read_time"`
}

// Post is a full article: its header, the Markdown body and the rendered
// HTML.
type Post struct {
	Meta
	Content string `json:"content"`
	HTML    string `json:"html"`
}

// Input is the editable part of an article. An empty Date means "now" on
// create and "unchanged" on update.
type Input struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Date     string   `json:"date"`
	Author   string   `json:"author"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Featured bool     `json:"featured"`
	Image    string   `json:"image"`
	ReadTime string   `json:"read_time"`
}

// Pipeline manages the articles under one directory.
type Pipeline struct {
	dir string
	now func() time.Time
}

// New returns a Pipeline rooted at dir. The directory is created on the
// first write.
func New(dir string) *Pipeline {
	return &Pipeline{dir: dir, now: time.Now}
}

// Dir returns the articles directory.
func (p *Pipeline) Dir() string {
	return p.dir
}

// Slugs lists the slug of every article file. A missing directory has no
// articles.
func (p *Pipeline) Slugs() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ext)
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) || !validName(name) {
			continue
		}
		slugs = append(slugs, name)
	}
	return slugs, nil
}

// Post returns the article with the given slug rendered to HTML, or nil if
// there is no such article.
func (p *Pipeline) Post(s string) (*Post, error) {
	if !validName(s) {
		return nil, nil
	}

	data, err := os.ReadFile(p.path(s))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read article %s: %w", s, err)
	}

	meta, body, err := p.parse(s, data)
	if err != nil {
		return nil, err
	}

	html, err := markdown.ToHTML(body)
	if err != nil {
		return nil, fmt.Errorf("render article %s: %w", s, err)
	}

	return &Post{Meta: meta, Content: body, HTML: html}, nil
}

// AllMeta returns every article's header, newest first. Files whose header
// cannot be decoded are logged and left out.
func (p *Pipeline) AllMeta() ([]Meta, error) {
	slugs, err := p.Slugs()
	if err != nil {
		return nil, err
	}

	metas := make([]Meta, 0, len(slugs))
	for _, s := range slugs {
		data, err := os.ReadFile(p.path(s))
		if err != nil {
			return nil, fmt.Errorf("read article %s: %w", s, err)
		}
		meta, _, err := p.parse(s, data)
		if err != nil {
			slog.Warn("skipping article", "slug", s, "error", err)
			continue
		}
		metas = append(metas, meta)
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].Date.After(metas[j].Date)
	})
	return metas, nil
}

// Featured returns the headers of featured articles, newest first.
func (p *Pipeline) Featured() ([]Meta, error) {
	return p.filter(func(m Meta) bool { return m.Featured })
}

// ByCategory returns the headers of articles in category, compared
// case-insensitively.
func (p *Pipeline) ByCategory(category string) ([]Meta, error) {
	return p.filter(func(m Meta) bool { return strings.EqualFold(m.Category, category) })
}

// ByTag returns the headers of articles carrying tag, compared
// case-insensitively.
func (p *Pipeline) ByTag(tag string) ([]Meta, error) {
	return p.filter(func(m Meta) bool {
		for _, t := range m.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	})
}

// Categories returns the distinct categories in ascending order.
func (p *Pipeline) Categories() ([]string, error) {
	metas, err := p.AllMeta()
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(metas))
	for _, m := range metas {
		values = append(values, m.Category)
	}
	return distinct(values), nil
}

// Tags returns the distinct tags across all articles in ascending order.
func (p *Pipeline) Tags() ([]string, error) {
	metas, err := p.AllMeta()
	if err != nil {
		return nil, err
	}
	var values []string
	for _, m := range metas {
		values = append(values, m.Tags...)
	}
	return distinct(values), nil
}

// CreatePost writes a new article and returns its slug, derived from the
// title. It fails with errs.ErrConflict if the slug is already taken.
func (p *Pipeline) CreatePost(in Input) (string, error) {
	s := slug.Generate(in.Title)
	if s == "" {
		return "", errs.Invalid("title", "title must contain at least one letter or digit")
	}

	path := p.path(s)
	if _, err := os.Stat(path); err == nil {
		return "", errs.Conflict("slug", s)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat article %s: %w", s, err)
	}

	date := p.now().UTC()
	if in.Date != "" {
		date = parseDate(in.Date, date)
	}

	if err := p.write(s, in, date); err != nil {
		return "", err
	}
	slog.Info("article created", "slug", s)
	return s, nil
}

// UpdatePost rewrites an existing article in place. The slug stays the
// same even if the title changes; a blank date or author keeps the stored
// one. It reports false if there is no such
// article.
func (p *Pipeline) UpdatePost(s string, in Input) (bool, error) {
	if !validName(s) {
		return false, nil
	}

	data, err := os.ReadFile(p.path(s))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read article %s: %w", s, err)
	}

	date := p.now().UTC()
	if existing, _, err := p.parse(s, data); err == nil {
		date = existing.Date
		if strings.TrimSpace(in.Author) == "" {
			in.Author = existing.Author
		}
	}
	if in.Date != "" {
		date = parseDate(in.Date, date)
	}

	if err := p.write(s, in, date); err != nil {
		return false, err
	}
	return true, nil
}

// DeletePost removes an article, reporting false if there was none.
func (p *Pipeline) DeletePost(s string) (bool, error) {
	if !validName(s) {
		return false, nil
	}

	err := os.Remove(p.path(s))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete article %s: %w", s, err)
	}
	return true, nil
}

// validName accepts any file stem inside the articles directory, so files
// written by hand (Hello_World.md) stay reachable by the name they are
// listed under. Hidden files and path traversal are refused.
func validName(s string) bool {
	return s != "" &&
		filepath.Base(s) == s &&
		!strings.HasPrefix(s, ".") &&
		!strings.ContainsAny(s, `/\`)
}

func (p *Pipeline) path(s string) string {
	return filepath.Join(p.dir, s+ext)
}

func (p *Pipeline) filter(keep func(Meta) bool) ([]Meta, error) {
	metas, err := p.AllMeta()
	if err != nil {
		return nil, err
	}
	out := make([]Meta, 0, len(metas))
	for _, m := range metas {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (p *Pipeline) parse(s string, data []byte) (Meta, string, error) {
	var h header
	body, err := frontmatter.Parse(bytes.NewReader(data), &h, yamlFormat)
	if err != nil {
		return Meta{}, "", fmt.Errorf("parse article %s: %w", s, err)
	}
	return h.meta(s, p.now()), strings.TrimLeft(string(body), "\n"), nil
}

func (p *Pipeline) write(s string, in Input, date time.Time) error {
	out := fileHeader{
		Title:    strings.TrimSpace(in.Title),
		Excerpt:  strings.TrimSpace(in.Excerpt),
		Date:     date.Format(time.RFC3339),
		Author:   orDefault(in.Author, DefaultAuthor),
		Category: orDefault(in.Category, models.DefaultCategory),
		Tags:     models.NormalizeTags(in.Tags),
		Featured: in.Featured,
		Image:    strings.TrimSpace(in.Image),
		ReadTime: orDefault(in.ReadTime, models.DefaultReadTime),
	}

	head, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode article %s: %w", s, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(in.Content))
	buf.WriteString("\n")

	if err := fsutil.WriteFile(p.path(s), buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("write article %s: %w", s, err)
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
