// Package schematest builds fully populated block content for tests.
package schematest

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-storefront-cms/internal/schema"
)

// Sample returns content of type t with every field set. Text, links and media
// embed variant; list item ids are the same for every variant.
func Sample(t schema.BlockType, variant string) schema.Content {
	s := func(field string) string { return fmt.Sprintf("%s %s", field, variant) }
	n := len(variant) + 1

	switch t {
	case schema.TypeHero:
		return &schema.Hero{
			Headline:        s("headline"),
			Subheadline:     s("subheadline"),
			CTAText:         s("cta"),
			CTALink:         "/" + variant + "/shop",
			BackgroundImage: "media/" + variant + ".jpg",
			OverlayOpacity:  float64(n) / 10,
			Alignment:       s("align"),
		}
	case schema.TypeFeatures:
		return &schema.Features{
			Title:    s("title"),
			Subtitle: s("subtitle"),
			Columns:  n,
			Items: []schema.FeatureItem{
				{ID: "a", Icon: s("icon-a"), Title: s("feature a"), Description: s("desc a"), Link: "/" + variant + "/a"},
				{ID: "b", Icon: s("icon-b"), Title: s("feature b"), Description: s("desc b"), Link: "/" + variant + "/b"},
			},
		}
	case schema.TypeProducts:
		return &schema.Products{
			Title:      s("title"),
			Subtitle:   s("subtitle"),
			ProductIDs: []string{variant + "-1", variant + "-2"},
			Layout:     s("layout"),
			Columns:    n,
			ShowPrices: n%2 == 1,
			CTAText:    s("cta"),
			CTALink:    "/" + variant + "/catalog",
		}
	case schema.TypeTestimonials:
		return &schema.Testimonials{
			Title:  s("title"),
			Layout: s("layout"),
			Items: []schema.TestimonialItem{
				{ID: "a", Quote: s("quote a"), Author: s("author a"), Role: s("role a"), AvatarURL: "media/" + variant + "-a.png", Rating: n},
				{ID: "b", Quote: s("quote b"), Author: s("author b"), Role: s("role b"), AvatarURL: "media/" + variant + "-b.png", Rating: n + 1},
				{ID: "c", Quote: s("quote c"), Author: s("author c"), Role: s("role c"), AvatarURL: "media/" + variant + "-c.png", Rating: n + 2},
			},
		}
	case schema.TypeNewsletter:
		return &schema.Newsletter{
			Title:           s("title"),
			Description:     s("description"),
			Placeholder:     s("placeholder"),
			ButtonText:      s("button"),
			SuccessMessage:  s("success"),
			ListID:          "list-" + variant,
			BackgroundColor: "#" + variant,
		}
	case schema.TypeCTA:
		return &schema.CTA{
			Title:           s("title"),
			Description:     s("description"),
			ButtonText:      s("button"),
			ButtonLink:      "/" + variant + "/go",
			SecondaryText:   s("secondary"),
			SecondaryLink:   "/" + variant + "/more",
			Style:           s("style"),
			BackgroundImage: "media/" + variant + "-cta.jpg",
		}
	case schema.TypeTextImage:
		return &schema.TextImage{
			Title:         s("title"),
			Body:          s("body"),
			ImageURL:      "media/" + variant + "-side.jpg",
			ImageAlt:      s("alt"),
			ImagePosition: s("position"),
			CTAText:       s("cta"),
			CTALink:       "/" + variant + "/read",
		}
	case schema.TypeStats:
		return &schema.Stats{
			Title:   s("title"),
			Columns: n,
			Items: []schema.StatItem{
				{ID: "a", Value: variant + "99%", Label: s("label a"), Description: s("desc a")},
				{ID: "b", Value: variant + "10k", Label: s("label b"), Description: s("desc b")},
			},
		}
	case schema.TypeSocialProof:
		return &schema.SocialProof{
			Title:     s("title"),
			Grayscale: n%2 == 1,
			Items: []schema.ProofItem{
				{ID: "a", Name: s("brand a"), LogoURL: "media/" + variant + "-a.svg", Link: "https://a." + variant + ".example"},
				{ID: "b", Name: s("brand b"), LogoURL: "media/" + variant + "-b.svg", Link: "https://b." + variant + ".example"},
			},
		}
	default:
		panic(fmt.Sprintf("schematest: unknown block type %q", t))
	}
}

// ToMap decodes c into its JSON object form.
func ToMap(c schema.Content) (map[string]any, error) {
	encoded, err := schema.Marshal(c)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}
