package schema_test

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/goliatone/go-storefront-cms/internal/schema"
	"github.com/goliatone/go-storefront-cms/internal/schema/schematest"
)

func TestRegistryCoversEveryJSONField(t *testing.T) {
	for _, typ := range schema.Types() {
		t.Run(string(typ), func(t *testing.T) {
			desc, ok := schema.Describe(typ)
			if !ok {
				t.Fatalf("type %s missing from registry", typ)
			}
			doc, err := schematest.ToMap(schematest.Sample(typ, "base"))
			if err != nil {
				t.Fatalf("encode sample: %v", err)
			}
			if doc["type"] != string(typ) {
				t.Fatalf("expected type tag %q, got %v", typ, doc["type"])
			}
			delete(doc, "type")

			var jsonKeys, fieldKeys []string
			for key := range doc {
				jsonKeys = append(jsonKeys, key)
			}
			for _, field := range desc.Fields {
				fieldKeys = append(fieldKeys, field.Name)
				if len(field.Items) == 0 {
					continue
				}
				list, _ := doc[field.Name].([]any)
				if len(list) == 0 {
					t.Fatalf("sample has no items for %s", field.Name)
				}
				item := list[0].(map[string]any)
				if len(item) != len(field.Items) {
					t.Fatalf("%s item has %d keys, registry lists %d", field.Name, len(item), len(field.Items))
				}
				for _, sub := range field.Items {
					if _, ok := item[sub.Name]; !ok {
						t.Fatalf("%s item missing registry field %s", field.Name, sub.Name)
					}
				}
			}
			sort.Strings(jsonKeys)
			sort.Strings(fieldKeys)
			if strings.Join(jsonKeys, ",") != strings.Join(fieldKeys, ",") {
				t.Fatalf("json keys %v do not match registry %v", jsonKeys, fieldKeys)
			}
		})
	}
}

func TestListItemIdentityIsStructural(t *testing.T) {
	for _, typ := range schema.Types() {
		desc, _ := schema.Describe(typ)
		for _, field := range desc.Fields {
			if field.List && field.Class != schema.Structural {
				t.Fatalf("%s.%s: list fields must be structural", typ, field.Name)
			}
			if len(field.Items) > 0 && (field.Items[0].Name != schema.ItemIDField || field.Items[0].Class != schema.Structural) {
				t.Fatalf("%s.%s: item id must be the first structural item field", typ, field.Name)
			}
		}
	}
}

func TestTranslatablePaths(t *testing.T) {
	desc, _ := schema.Describe(schema.TypeTestimonials)
	got := strings.Join(desc.TranslatablePaths(), ",")
	want := "title,items[].quote,items[].author,items[].role"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestUnmarshalRejectsUnknownOrMissingTag(t *testing.T) {
	if _, err := schema.Unmarshal([]byte(`{"type":"carousel"}`)); !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
	if _, err := schema.Unmarshal([]byte(`{"headline":"hi"}`)); !errors.Is(err, schema.ErrTypeRequired) {
		t.Fatalf("expected missing tag error, got %v", err)
	}
}

func TestUnmarshalIgnoresUnknownMembers(t *testing.T) {
	content, err := schema.Unmarshal([]byte(`{"type":"hero","headline":"Welcome","legacy_field":42}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	hero, ok := content.(*schema.Hero)
	if !ok || hero.Headline != "Welcome" {
		t.Fatalf("unexpected content %#v", content)
	}
}

func TestMarshalEmptyVariant(t *testing.T) {
	encoded, err := schema.Marshal(&schema.CTA{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"type":"cta"}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}

func TestPayloadScanKeepsMalformedRows(t *testing.T) {
	var payload schema.Payload
	if err := payload.Scan(`{"type":"hero","headline":5}`); err != nil {
		t.Fatalf("scan should not fail: %v", err)
	}
	if payload.Err() == nil || payload.Content != nil {
		t.Fatalf("expected decode error to be recorded, got %+v", payload)
	}
	if string(payload.Raw()) != `{"type":"hero","headline":5}` {
		t.Fatalf("expected raw bytes to be kept, got %s", payload.Raw())
	}

	if err := payload.Scan([]byte(`{"type":"stats","title":"Numbers"}`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if payload.Err() != nil || payload.Type() != schema.TypeStats {
		t.Fatalf("expected decoded stats payload, got %+v", payload)
	}
	value, err := payload.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != `{"type":"stats","title":"Numbers"}` {
		t.Fatalf("unexpected stored value %v", value)
	}
}

func TestCheckType(t *testing.T) {
	if err := schema.CheckType(schema.TypeHero, &schema.Hero{}); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := schema.CheckType(schema.TypeHero, &schema.CTA{}); !errors.Is(err, schema.ErrTypeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := schema.CheckType(schema.TypeHero, nil); !errors.Is(err, schema.ErrNilContent) {
		t.Fatalf("expected nil content error, got %v", err)
	}
}

func TestAssignItemIDsFillsBlanksAndDuplicates(t *testing.T) {
	content := &schema.Testimonials{Items: []schema.TestimonialItem{
		{ID: "a", Quote: "one"},
		{Quote: "two"},
		{ID: "a", Quote: "three"},
	}}
	counter := 0
	next := func() string {
		counter++
		return "gen-" + string(rune('0'+counter))
	}
	if !schema.AssignItemIDs(content, next) {
		t.Fatalf("expected ids to change")
	}
	got := []string{content.Items[0].ID, content.Items[1].ID, content.Items[2].ID}
	if strings.Join(got, ",") != "a,gen-1,gen-2" {
		t.Fatalf("unexpected ids %v", got)
	}
	if schema.AssignItemIDs(content, next) {
		t.Fatalf("expected second pass to be a no-op")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := schematest.Sample(schema.TypeFeatures, "base").(*schema.Features)
	copied := schema.Clone(original).(*schema.Features)
	copied.Items[0].Title = "changed"
	if original.Items[0].Title == "changed" {
		t.Fatalf("clone shares item storage")
	}
}

func TestSettingsValidation(t *testing.T) {
	validator := schema.DefaultSettingsValidator()

	if err := validator.Validate(nil); err != nil {
		t.Fatalf("nil settings should pass: %v", err)
	}
	ok := map[string]any{
		"spacing":    map[string]any{"top": "lg"},
		"visibility": map[string]any{"mobile": false},
		"custom":     []int{1, 2},
	}
	if err := validator.Validate(ok); err != nil {
		t.Fatalf("expected settings to pass: %v", err)
	}

	err := validator.Validate(map[string]any{
		"spacing": map[string]any{"top": "huge"},
		"anchor":  "Not Valid",
	})
	if !errors.Is(err, schema.ErrSettingsInvalid) {
		t.Fatalf("expected settings error, got %v", err)
	}
	var settingsErr *schema.SettingsError
	if !errors.As(err, &settingsErr) || len(settingsErr.Issues) < 2 {
		t.Fatalf("expected two issues, got %v", err)
	}
}
