package schema

import (
	"bytes"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Clone returns a deep copy of c.
func Clone(c Content) Content {
	if c == nil {
		return nil
	}
	var out Content
	_ = c.Accept(cloner{out: &out})
	return out
}

type cloner struct{ out *Content }

func (v cloner) VisitHero(c *Hero) error { cp := *c; *v.out = &cp; return nil }

func (v cloner) VisitFeatures(c *Features) error {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	*v.out = &cp
	return nil
}

func (v cloner) VisitProducts(c *Products) error {
	cp := *c
	cp.ProductIDs = slices.Clone(c.ProductIDs)
	*v.out = &cp
	return nil
}

func (v cloner) VisitTestimonials(c *Testimonials) error {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	*v.out = &cp
	return nil
}

func (v cloner) VisitNewsletter(c *Newsletter) error { cp := *c; *v.out = &cp; return nil }
func (v cloner) VisitCTA(c *CTA) error               { cp := *c; *v.out = &cp; return nil }
func (v cloner) VisitTextImage(c *TextImage) error   { cp := *c; *v.out = &cp; return nil }

func (v cloner) VisitStats(c *Stats) error {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	*v.out = &cp
	return nil
}

func (v cloner) VisitSocialProof(c *SocialProof) error {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	*v.out = &cp
	return nil
}

// NewItemID is the default list item id generator.
func NewItemID() string { return uuid.NewString() }

// AssignItemIDs gives every list item without an id, or with an id already
// used earlier in the same list, a fresh one. It mutates c and reports whether
// anything changed.
func AssignItemIDs(c Content, next func() string) bool {
	if c == nil {
		return false
	}
	if next == nil {
		next = NewItemID
	}
	assigner := &idAssigner{next: next}
	_ = c.Accept(assigner)
	return assigner.changed
}

type idAssigner struct {
	next    func() string
	changed bool
}

func (a *idAssigner) VisitHero(*Hero) error { return nil }

func (a *idAssigner) VisitFeatures(c *Features) error {
	a.apply(assignIDs(c.Items, func(item *FeatureItem) *string { return &item.ID }, a.next))
	return nil
}

func (a *idAssigner) VisitProducts(*Products) error { return nil }

func (a *idAssigner) VisitTestimonials(c *Testimonials) error {
	a.apply(assignIDs(c.Items, func(item *TestimonialItem) *string { return &item.ID }, a.next))
	return nil
}

func (a *idAssigner) VisitNewsletter(*Newsletter) error { return nil }
func (a *idAssigner) VisitCTA(*CTA) error               { return nil }
func (a *idAssigner) VisitTextImage(*TextImage) error   { return nil }

func (a *idAssigner) VisitStats(c *Stats) error {
	a.apply(assignIDs(c.Items, func(item *StatItem) *string { return &item.ID }, a.next))
	return nil
}

func (a *idAssigner) VisitSocialProof(c *SocialProof) error {
	a.apply(assignIDs(c.Items, func(item *ProofItem) *string { return &item.ID }, a.next))
	return nil
}

func (a *idAssigner) apply(changed bool) {
	if changed {
		a.changed = true
	}
}

func assignIDs[T any](items []T, id func(*T) *string, next func() string) bool {
	changed := false
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		ref := id(&items[i])
		*ref = strings.TrimSpace(*ref)
		if _, dup := seen[*ref]; *ref == "" || dup {
			*ref = next()
			changed = true
		}
		seen[*ref] = struct{}{}
	}
	return changed
}

// Equal compares two contents by their stored encoding.
func Equal(a, b Content) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	left, err := Marshal(a)
	if err != nil {
		return false
	}
	right, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
