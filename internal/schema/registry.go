package schema

// FieldClass says whether a field follows the base language or is edited per
// language.
type FieldClass uint8

const (
	Structural FieldClass = iota
	Translatable
)

func (c FieldClass) String() string {
	if c == Translatable {
		return "translatable"
	}
	return "structural"
}

// FieldSpec describes one JSON field of a variant. List fields are structural
// (cardinality, order and item ids follow the base) and carry the per-item
// split in Items.
type FieldSpec struct {
	Name  string
	Class FieldClass
	List  bool
	Items []FieldSpec
}

// TypeSpec is the registry entry for one block type.
type TypeSpec struct {
	Type   BlockType
	Label  string
	Fields []FieldSpec
}

// ItemIDField names the identity field of list items.
const ItemIDField = "id"

func text(name string) FieldSpec   { return FieldSpec{Name: name, Class: Translatable} }
func fixed(name string) FieldSpec  { return FieldSpec{Name: name, Class: Structural} }
func values(name string) FieldSpec { return FieldSpec{Name: name, Class: Structural, List: true} }
func items(name string, fields ...FieldSpec) FieldSpec {
	return FieldSpec{Name: name, Class: Structural, List: true, Items: append([]FieldSpec{fixed(ItemIDField)}, fields...)}
}

var registry = map[BlockType]TypeSpec{
	TypeHero: {
		Type:  TypeHero,
		Label: "Hero banner",
		Fields: []FieldSpec{
			text("headline"),
			text("subheadline"),
			text("cta_text"),
			fixed("cta_link"),
			fixed("background_image"),
			fixed("overlay_opacity"),
			fixed("alignment"),
		},
	},
	TypeFeatures: {
		Type:  TypeFeatures,
		Label: "Feature grid",
		Fields: []FieldSpec{
			text("title"),
			text("subtitle"),
			fixed("columns"),
			items("items", fixed("icon"), text("title"), text("description"), fixed("link")),
		},
	},
	TypeProducts: {
		Type:  TypeProducts,
		Label: "Product showcase",
		Fields: []FieldSpec{
			text("title"),
			text("subtitle"),
			values("product_ids"),
			fixed("layout"),
			fixed("columns"),
			fixed("show_prices"),
			text("cta_text"),
			fixed("cta_link"),
		},
	},
	TypeTestimonials: {
		Type:  TypeTestimonials,
		Label: "Testimonials",
		Fields: []FieldSpec{
			text("title"),
			fixed("layout"),
			items("items", text("quote"), text("author"), text("role"), fixed("avatar_url"), fixed("rating")),
		},
	},
	TypeNewsletter: {
		Type:  TypeNewsletter,
		Label: "Newsletter signup",
		Fields: []FieldSpec{
			text("title"),
			text("description"),
			text("placeholder"),
			text("button_text"),
			text("success_message"),
			fixed("list_id"),
			fixed("background_color"),
		},
	},
	TypeCTA: {
		Type:  TypeCTA,
		Label: "Call to action",
		Fields: []FieldSpec{
			text("title"),
			text("description"),
			text("button_text"),
			fixed("button_link"),
			text("secondary_text"),
			fixed("secondary_link"),
			fixed("style"),
			fixed("background_image"),
		},
	},
	TypeTextImage: {
		Type:  TypeTextImage,
		Label: "Text and image",
		Fields: []FieldSpec{
			text("title"),
			text("body"),
			fixed("image_url"),
			text("image_alt"),
			fixed("image_position"),
			text("cta_text"),
			fixed("cta_link"),
		},
	},
	TypeStats: {
		Type:  TypeStats,
		Label: "Stats",
		Fields: []FieldSpec{
			text("title"),
			fixed("columns"),
			items("items", fixed("value"), text("label"), text("description")),
		},
	},
	TypeSocialProof: {
		Type:  TypeSocialProof,
		Label: "Social proof",
		Fields: []FieldSpec{
			text("title"),
			fixed("grayscale"),
			items("items", text("name"), fixed("logo_url"), fixed("link")),
		},
	},
}

// Describe returns the field classification for t.
func Describe(t BlockType) (TypeSpec, bool) {
	spec, ok := registry[t]
	if !ok {
		return TypeSpec{}, false
	}
	spec.Fields = cloneFieldSpecs(spec.Fields)
	return spec, true
}

// Field looks up a top-level field by JSON name.
func (s TypeSpec) Field(name string) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// TranslatablePaths lists translatable leaves as dotted paths, list items
// written as "items[].title".
func (s TypeSpec) TranslatablePaths() []string {
	var out []string
	for _, field := range s.Fields {
		if field.Class == Translatable {
			out = append(out, field.Name)
		}
		for _, item := range field.Items {
			if item.Class == Translatable {
				out = append(out, field.Name+"[]."+item.Name)
			}
		}
	}
	return out
}

func cloneFieldSpecs(in []FieldSpec) []FieldSpec {
	if in == nil {
		return nil
	}
	out := make([]FieldSpec, len(in))
	for i, field := range in {
		out[i] = field
		out[i].Items = cloneFieldSpecs(field.Items)
	}
	return out
}
