package schema

// Hero is a full-width banner.
type Hero struct {
	Headline        string  `json:"headline,omitempty"`
	Subheadline     string  `json:"subheadline,omitempty"`
	CTAText         string  `json:"cta_text,omitempty"`
	CTALink         string  `json:"cta_link,omitempty"`
	BackgroundImage string  `json:"background_image,omitempty"`
	OverlayOpacity  float64 `json:"overlay_opacity,omitempty"`
	Alignment       string  `json:"alignment,omitempty"`
}

// Features is a grid of feature cards.
type Features struct {
	Title    string        `json:"title,omitempty"`
	Subtitle string        `json:"subtitle,omitempty"`
	Columns  int           `json:"columns,omitempty"`
	Items    []FeatureItem `json:"items,omitempty"`
}

type FeatureItem struct {
	ID          string `json:"id,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Products showcases catalog entries referenced by id.
type Products struct {
	Title      string   `json:"title,omitempty"`
	Subtitle   string   `json:"subtitle,omitempty"`
	ProductIDs []string `json:"product_ids,omitempty"`
	Layout     string   `json:"layout,omitempty"`
	Columns    int      `json:"columns,omitempty"`
	ShowPrices bool     `json:"show_prices,omitempty"`
	CTAText    string   `json:"cta_text,omitempty"`
	CTALink    string   `json:"cta_link,omitempty"`
}

// Testimonials is a list of customer quotes.
type Testimonials struct {
	Title  string            `json:"title,omitempty"`
	Layout string            `json:"layout,omitempty"`
	Items  []TestimonialItem `json:"items,omitempty"`
}

type TestimonialItem struct {
	ID        string `json:"id,omitempty"`
	Quote     string `json:"quote,omitempty"`
	Author    string `json:"author,omitempty"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Rating    int    `json:"rating,omitempty"`
}

// Newsletter is a signup form.
type Newsletter struct {
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	Placeholder     string `json:"placeholder,omitempty"`
	ButtonText      string `json:"button_text,omitempty"`
	SuccessMessage  string `json:"success_message,omitempty"`
	ListID          string `json:"list_id,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// CTA is a call-to-action strip.
type CTA struct {
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	ButtonText      string `json:"button_text,omitempty"`
	ButtonLink      string `json:"button_link,omitempty"`
	SecondaryText   string `json:"secondary_text,omitempty"`
	SecondaryLink   string `json:"secondary_link,omitempty"`
	Style           string `json:"style,omitempty"`
	BackgroundImage string `json:"background_image,omitempty"`
}

// TextImage pairs a text column with an image.
type TextImage struct {
	Title         string `json:"title,omitempty"`
	Body          string `json:"body,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	ImageAlt      string `json:"image_alt,omitempty"`
	ImagePosition string `json:"image_position,omitempty"`
	CTAText       string `json:"cta_text,omitempty"`
	CTALink       string `json:"cta_link,omitempty"`
}

// Stats is a row of figures.
type Stats struct {
	Title   string     `json:"title,omitempty"`
	Columns int        `json:"columns,omitempty"`
	Items   []StatItem `json:"items,omitempty"`
}

type StatItem struct {
	ID          string `json:"id,omitempty"`
	Value       string `json:"value,omitempty"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// SocialProof is a strip of partner or press logos.
type SocialProof struct {
	Title     string      `json:"title,omitempty"`
	Grayscale bool        `json:"grayscale,omitempty"`
	Items     []ProofItem `json:"items,omitempty"`
}

type ProofItem struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
	Link    string `json:"link,omitempty"`
}

func (*Hero) Type() BlockType         { return TypeHero }
func (*Features) Type() BlockType     { return TypeFeatures }
func (*Products) Type() BlockType     { return TypeProducts }
func (*Testimonials) Type() BlockType { return TypeTestimonials }
func (*Newsletter) Type() BlockType   { return TypeNewsletter }
func (*CTA) Type() BlockType          { return TypeCTA }
func (*TextImage) Type() BlockType    { return TypeTextImage }
func (*Stats) Type() BlockType        { return TypeStats }
func (*SocialProof) Type() BlockType  { return TypeSocialProof }

func (c *Hero) Accept(v Visitor) error         { return v.VisitHero(c) }
func (c *Features) Accept(v Visitor) error     { return v.VisitFeatures(c) }
func (c *Products) Accept(v Visitor) error     { return v.VisitProducts(c) }
func (c *Testimonials) Accept(v Visitor) error { return v.VisitTestimonials(c) }
func (c *Newsletter) Accept(v Visitor) error   { return v.VisitNewsletter(c) }
func (c *CTA) Accept(v Visitor) error          { return v.VisitCTA(c) }
func (c *TextImage) Accept(v Visitor) error    { return v.VisitTextImage(c) }
func (c *Stats) Accept(v Visitor) error        { return v.VisitStats(c) }
func (c *SocialProof) Accept(v Visitor) error  { return v.VisitSocialProof(c) }

func (*Hero) sealed()         {}
func (*Features) sealed()     {}
func (*Products) sealed()     {}
func (*Testimonials) sealed() {}
func (*Newsletter) sealed()   {}
func (*CTA) sealed()          {}
func (*TextImage) sealed()    {}
func (*Stats) sealed()        {}
func (*SocialProof) sealed()  {}
