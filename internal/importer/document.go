// Package importer loads seed pages from Markdown files whose YAML
// frontmatter describes the page, its blocks and their translations.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-storefront-cms/internal/schema"
)

var (
	ErrSlugMissing     = errors.New("importer: frontmatter slug is required")
	ErrBlockKeyMissing = errors.New("importer: block key is required")
	ErrBlockKeyRepeat  = errors.New("importer: block key repeats")
	ErrUnknownBlockKey = errors.New("importer: translation names an unknown block")
)

// Document is the frontmatter of one seed file. The Markdown body is ignored.
type Document struct {
	Path            string                         `yaml:"-"`
	Slug            string                         `yaml:"slug"`
	Title           string                         `yaml:"title"`
	MetaDescription string                         `yaml:"meta_description"`
	MetaKeywords    string                         `yaml:"meta_keywords"`
	Published       bool                           `yaml:"published"`
	Blocks          []BlockDocument                `yaml:"blocks"`
	Translations    map[string]TranslationDocument `yaml:"translations"`
}

type BlockDocument struct {
	Key      string         `yaml:"key"`
	Type     string         `yaml:"type"`
	Enabled  *bool          `yaml:"enabled"`
	Settings map[string]any `yaml:"settings"`
	Content  map[string]any `yaml:"content"`
}

// TranslationDocument holds one locale. Blocks maps a block key to the
// translator's content for that block.
type TranslationDocument struct {
	Title           string                    `yaml:"title"`
	Slug            string                    `yaml:"slug"`
	MetaTitle       string                    `yaml:"meta_title"`
	MetaDescription string                    `yaml:"meta_description"`
	Blocks          map[string]map[string]any `yaml:"blocks"`
}

// Parse reads the frontmatter of source and checks that block keys are
// present, unique and referenced correctly by translations.
func Parse(path string, source []byte) (*Document, error) {
	var doc Document
	if _, err := frontmatter.Parse(bytes.NewReader(source), &doc); err != nil {
		return nil, fmt.Errorf("importer: parse %s: %w", path, err)
	}
	doc.Path = path
	doc.Slug = strings.TrimSpace(doc.Slug)
	if doc.Slug == "" {
		return nil, fmt.Errorf("%w: %s", ErrSlugMissing, path)
	}

	types := make(map[string]schema.BlockType, len(doc.Blocks))
	for i := range doc.Blocks {
		key := strings.TrimSpace(doc.Blocks[i].Key)
		if key == "" {
			return nil, fmt.Errorf("%w: %s block %d", ErrBlockKeyMissing, path, i)
		}
		if _, seen := types[key]; seen {
			return nil, fmt.Errorf("%w: %s %q", ErrBlockKeyRepeat, path, key)
		}
		doc.Blocks[i].Key = key
		types[key] = schema.BlockType(strings.TrimSpace(doc.Blocks[i].Type))
	}
	for locale, tr := range doc.Translations {
		for key := range tr.Blocks {
			if _, ok := types[key]; !ok {
				return nil, fmt.Errorf("%w: %s %s/%q", ErrUnknownBlockKey, path, locale, key)
			}
		}
	}
	return &doc, nil
}

// BlockType returns the declared type of the block named key.
func (d *Document) BlockType(key string) schema.BlockType {
	for _, b := range d.Blocks {
		if b.Key == key {
			return schema.BlockType(strings.TrimSpace(b.Type))
		}
	}
	return ""
}

// decodeContent turns a frontmatter map into typed content by way of the
// tagged JSON codec.
func decodeContent(blockType schema.BlockType, fields map[string]any) (schema.Content, error) {
	tagged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		tagged[k] = normalize(v)
	}
	tagged["type"] = string(blockType)
	raw, err := json.Marshal(tagged)
	if err != nil {
		return nil, fmt.Errorf("importer: encode %s content: %w", blockType, err)
	}
	return schema.Unmarshal(raw)
}

// normalize rewrites map[any]any values produced by yaml decoders into
// map[string]any so encoding/json accepts them.
func normalize(v any) any {
	switch typed := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[fmt.Sprint(k)] = normalize(inner)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = normalize(inner)
		}
		return out
	default:
		return v
	}
}

func sameSettings(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}
