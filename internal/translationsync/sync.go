// Package translationsync merges per-language block content with its base.
//
// Structural fields (links, media, layout values, list membership and order)
// always come from the base block. Translatable text comes from the
// translation when it is non-blank and falls back to the base otherwise. The
// field split follows schema.Describe.
package translationsync

import (
	"errors"
	"slices"
	"strings"

	"github.com/goliatone/go-storefront-cms/internal/schema"
)

var ErrBaseRequired = errors.New("translationsync: base content required")

// Sync returns the effective content for a language. The result always has
// the tag and structural shape of base. A nil translation, or one tagged with
// a different type, contributes nothing. Neither argument is mutated.
func Sync(base, translation schema.Content) (schema.Content, error) {
	if base == nil {
		return nil, ErrBaseRequired
	}
	if translation != nil && translation.Type() != base.Type() {
		translation = nil
	}
	m := &merger{translation: translation}
	if err := base.Accept(m); err != nil {
		return nil, err
	}
	return m.out, nil
}

type merger struct {
	translation schema.Content
	out         schema.Content
}

func (m *merger) VisitHero(b *schema.Hero) error {
	out := *b
	if t, ok := m.translation.(*schema.Hero); ok {
		out.Headline = pick(t.Headline, b.Headline)
		out.Subheadline = pick(t.Subheadline, b.Subheadline)
		out.CTAText = pick(t.CTAText, b.CTAText)
	}
	m.out = &out
	return nil
}

func (m *merger) VisitFeatures(b *schema.Features) error {
	out := *b
	var items []schema.FeatureItem
	if t, ok := m.translation.(*schema.Features); ok {
		out.Title = pick(t.Title, b.Title)
		out.Subtitle = pick(t.Subtitle, b.Subtitle)
		items = t.Items
	}
	out.Items = mergeItems(b.Items, items, featureID, func(dst *schema.FeatureItem, src schema.FeatureItem) {
		dst.Title = pick(src.Title, dst.Title)
		dst.Description = pick(src.Description, dst.Description)
	})
	m.out = &out
	return nil
}

func (m *merger) VisitProducts(b *schema.Products) error {
	out := *b
	out.ProductIDs = slices.Clone(b.ProductIDs)
	if t, ok := m.translation.(*schema.Products); ok {
		out.Title = pick(t.Title, b.Title)
		out.Subtitle = pick(t.Subtitle, b.Subtitle)
		out.CTAText = pick(t.CTAText, b.CTAText)
	}
	m.out = &out
	return nil
}

func (m *merger) VisitTestimonials(b *schema.Testimonials) error {
	out := *b
	var items []schema.TestimonialItem
	if t, ok := m.translation.(*schema.Testimonials); ok {
		out.Title = pick(t.Title, b.Title)
		items = t.Items
	}
	out.Items = mergeItems(b.Items, items, testimonialID, func(dst *schema.TestimonialItem, src schema.TestimonialItem) {
		dst.Quote = pick(src.Quote, dst.Quote)
		dst.Author = pick(src.Author, dst.Author)
		dst.Role = pick(src.Role, dst.Role)
	})
	m.out = &out
	return nil
}

func (m *merger) VisitNewsletter(b *schema.Newsletter) error {
	out := *b
	if t, ok := m.translation.(*schema.Newsletter); ok {
		out.Title = pick(t.Title, b.Title)
		out.Description = pick(t.Description, b.Description)
		out.Placeholder = pick(t.Placeholder, b.Placeholder)
		out.ButtonText = pick(t.ButtonText, b.ButtonText)
		out.SuccessMessage = pick(t.SuccessMessage, b.SuccessMessage)
	}
	m.out = &out
	return nil
}

func (m *merger) VisitCTA(b *schema.CTA) error {
	out := *b
	if t, ok := m.translation.(*schema.CTA); ok {
		out.Title = pick(t.Title, b.Title)
		out.Description = pick(t.Description, b.Description)
		out.ButtonText = pick(t.ButtonText, b.ButtonText)
		out.SecondaryText = pick(t.SecondaryText, b.SecondaryText)
	}
	m.out = &out
	return nil
}

func (m *merger) VisitTextImage(b *schema.TextImage) error {
	out := *b
	if t, ok := m.translation.(*schema.TextImage); ok {
		out.Title = pick(t.Title, b.Title)
		out.Body = pick(t.Body, b.Body)
		out.ImageAlt = pick(t.ImageAlt, b.ImageAlt)
		out.CTAText = pick(t.CTAText, b.CTAText)
	}
	m.out = &out
	return nil
}

func (m *merger) VisitStats(b *schema.Stats) error {
	out := *b
	var items []schema.StatItem
	if t, ok := m.translation.(*schema.Stats); ok {
		out.Title = pick(t.Title, b.Title)
		items = t.Items
	}
	out.Items = mergeItems(b.Items, items, statID, func(dst *schema.StatItem, src schema.StatItem) {
		dst.Label = pick(src.Label, dst.Label)
		dst.Description = pick(src.Description, dst.Description)
	})
	m.out = &out
	return nil
}

func (m *merger) VisitSocialProof(b *schema.SocialProof) error {
	out := *b
	var items []schema.ProofItem
	if t, ok := m.translation.(*schema.SocialProof); ok {
		out.Title = pick(t.Title, b.Title)
		items = t.Items
	}
	out.Items = mergeItems(b.Items, items, proofID, func(dst *schema.ProofItem, src schema.ProofItem) {
		dst.Name = pick(src.Name, dst.Name)
	})
	m.out = &out
	return nil
}

// mergeItems rebuilds base in base order. Translated items are matched by id;
// translated items whose id is gone from base, or that have no id, are dropped.
func mergeItems[T any](base, translated []T, id func(T) string, apply func(dst *T, src T)) []T {
	if base == nil {
		return nil
	}
	index := make(map[string]T, len(translated))
	for _, item := range translated {
		key := id(item)
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = item
		}
	}
	out := slices.Clone(base)
	for i := range out {
		key := id(out[i])
		src, ok := index[key]
		if !ok {
			continue
		}
		// a repeated base id only takes the translation once
		delete(index, key)
		apply(&out[i], src)
	}
	return out
}

func pick(translated, base string) string {
	if strings.TrimSpace(translated) != "" {
		return translated
	}
	return base
}

func featureID(item schema.FeatureItem) string         { return item.ID }
func testimonialID(item schema.TestimonialItem) string { return item.ID }
func statID(item schema.StatItem) string               { return item.ID }
func proofID(item schema.ProofItem) string             { return item.ID }
