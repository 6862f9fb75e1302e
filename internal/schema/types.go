package schema

import (
	"errors"
	"strings"
)

// BlockType tags a block and its content. The set is closed.
type BlockType string

const (
	TypeHero         BlockType = "hero"
	TypeFeatures     BlockType = "features"
	TypeProducts     BlockType = "products"
	TypeTestimonials BlockType = "testimonials"
	TypeNewsletter   BlockType = "newsletter"
	TypeCTA          BlockType = "cta"
	TypeTextImage    BlockType = "text_image"
	TypeStats        BlockType = "stats"
	TypeSocialProof  BlockType = "social_proof"
)

var (
	ErrUnknownType  = errors.New("schema: unknown block type")
	ErrTypeRequired = errors.New("schema: content type tag required")
	ErrTypeMismatch = errors.New("schema: content type does not match block type")
	ErrNilContent   = errors.New("schema: content required")
)

// Types lists every block type in declaration order.
func Types() []BlockType {
	return []BlockType{
		TypeHero,
		TypeFeatures,
		TypeProducts,
		TypeTestimonials,
		TypeNewsletter,
		TypeCTA,
		TypeTextImage,
		TypeStats,
		TypeSocialProof,
	}
}

// ParseType normalizes raw into a known BlockType.
func ParseType(raw string) (BlockType, error) {
	candidate := BlockType(strings.ToLower(strings.TrimSpace(raw)))
	if candidate == "" {
		return "", ErrTypeRequired
	}
	if !candidate.Valid() {
		return "", ErrUnknownType
	}
	return candidate, nil
}

// Valid reports whether t belongs to the closed set.
func (t BlockType) Valid() bool {
	_, ok := registry[t]
	return ok
}

func (t BlockType) String() string { return string(t) }

// Content is the tagged union of block payloads. Only the variants in this
// package implement it.
type Content interface {
	Type() BlockType
	Accept(v Visitor) error
	sealed()
}

// Visitor dispatches over every Content variant. Adding a variant adds a
// method here, so every visitor has to handle it before the module builds.
type Visitor interface {
	VisitHero(*Hero) error
	VisitFeatures(*Features) error
	VisitProducts(*Products) error
	VisitTestimonials(*Testimonials) error
	VisitNewsletter(*Newsletter) error
	VisitCTA(*CTA) error
	VisitTextImage(*TextImage) error
	VisitStats(*Stats) error
	VisitSocialProof(*SocialProof) error
}

// New returns an empty variant for t.
func New(t BlockType) (Content, error) {
	switch t {
	case TypeHero:
		return &Hero{}, nil
	case TypeFeatures:
		return &Features{}, nil
	case TypeProducts:
		return &Products{}, nil
	case TypeTestimonials:
		return &Testimonials{}, nil
	case TypeNewsletter:
		return &Newsletter{}, nil
	case TypeCTA:
		return &CTA{}, nil
	case TypeTextImage:
		return &TextImage{}, nil
	case TypeStats:
		return &Stats{}, nil
	case TypeSocialProof:
		return &SocialProof{}, nil
	case "":
		return nil, ErrTypeRequired
	default:
		return nil, ErrUnknownType
	}
}

// CheckType verifies c is present and tagged as declared.
func CheckType(declared BlockType, c Content) error {
	if c == nil {
		return ErrNilContent
	}
	if !declared.Valid() {
		return ErrUnknownType
	}
	if c.Type() != declared {
		return ErrTypeMismatch
	}
	return nil
}
