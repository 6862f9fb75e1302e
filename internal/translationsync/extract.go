package translationsync

import (
	"strings"

	"github.com/goliatone/go-storefront-cms/internal/schema"
)

// Extract keeps the type tag and the translatable text of c, plus the ids of
// list items that carry text. Everything else is zeroed, which Sync reads as
// "use the base value". Sync(b, Extract(x)) equals Sync(b, x) for every b.
func Extract(c schema.Content) schema.Content {
	if c == nil {
		return nil
	}
	e := &extractor{}
	_ = c.Accept(e)
	return e.out
}

type extractor struct {
	out schema.Content
}

func (e *extractor) VisitHero(c *schema.Hero) error {
	e.out = &schema.Hero{
		Headline:    c.Headline,
		Subheadline: c.Subheadline,
		CTAText:     c.CTAText,
	}
	return nil
}

func (e *extractor) VisitFeatures(c *schema.Features) error {
	e.out = &schema.Features{
		Title:    c.Title,
		Subtitle: c.Subtitle,
		Items: extractItems(c.Items, featureID, func(item schema.FeatureItem) (schema.FeatureItem, bool) {
			out := schema.FeatureItem{ID: item.ID, Title: item.Title, Description: item.Description}
			return out, hasText(out.Title, out.Description)
		}),
	}
	return nil
}

func (e *extractor) VisitProducts(c *schema.Products) error {
	e.out = &schema.Products{
		Title:    c.Title,
		Subtitle: c.Subtitle,
		CTAText:  c.CTAText,
	}
	return nil
}

func (e *extractor) VisitTestimonials(c *schema.Testimonials) error {
	e.out = &schema.Testimonials{
		Title: c.Title,
		Items: extractItems(c.Items, testimonialID, func(item schema.TestimonialItem) (schema.TestimonialItem, bool) {
			out := schema.TestimonialItem{ID: item.ID, Quote: item.Quote, Author: item.Author, Role: item.Role}
			return out, hasText(out.Quote, out.Author, out.Role)
		}),
	}
	return nil
}

func (e *extractor) VisitNewsletter(c *schema.Newsletter) error {
	e.out = &schema.Newsletter{
		Title:          c.Title,
		Description:    c.Description,
		Placeholder:    c.Placeholder,
		ButtonText:     c.ButtonText,
		SuccessMessage: c.SuccessMessage,
	}
	return nil
}

func (e *extractor) VisitCTA(c *schema.CTA) error {
	e.out = &schema.CTA{
		Title:         c.Title,
		Description:   c.Description,
		ButtonText:    c.ButtonText,
		SecondaryText: c.SecondaryText,
	}
	return nil
}

func (e *extractor) VisitTextImage(c *schema.TextImage) error {
	e.out = &schema.TextImage{
		Title:    c.Title,
		Body:     c.Body,
		ImageAlt: c.ImageAlt,
		CTAText:  c.CTAText,
	}
	return nil
}

func (e *extractor) VisitStats(c *schema.Stats) error {
	e.out = &schema.Stats{
		Title: c.Title,
		Items: extractItems(c.Items, statID, func(item schema.StatItem) (schema.StatItem, bool) {
			out := schema.StatItem{ID: item.ID, Label: item.Label, Description: item.Description}
			return out, hasText(out.Label, out.Description)
		}),
	}
	return nil
}

func (e *extractor) VisitSocialProof(c *schema.SocialProof) error {
	e.out = &schema.SocialProof{
		Title: c.Title,
		Items: extractItems(c.Items, proofID, func(item schema.ProofItem) (schema.ProofItem, bool) {
			out := schema.ProofItem{ID: item.ID, Name: item.Name}
			return out, hasText(out.Name)
		}),
	}
	return nil
}

// extractItems drops items Sync could never use: no id, a repeated id, or no
// text at all.
func extractItems[T any](items []T, id func(T) string, project func(T) (T, bool)) []T {
	var out []T
	seen := map[string]struct{}{}
	for _, item := range items {
		key := id(item)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if projected, keep := project(item); keep {
			out = append(out, projected)
		}
	}
	return out
}

func hasText(values ...string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}
