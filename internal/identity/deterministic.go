// Package identity derives stable ids for records keyed by natural keys.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "storefront-cms"

// UUID hashes key into a UUID with go-hashid. Keys must carry their own type
// prefix so different record kinds never share a key.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}

// NormalizeLocale lowercases a language code and uses "-" as separator.
func NormalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

// PageTranslationUUID is the id of the (page, locale) translation row.
func PageTranslationUUID(pageID uuid.UUID, locale string) uuid.UUID {
	return UUID(namespace + ":page_translation:" + pageID.String() + ":" + NormalizeLocale(locale))
}

// BlockTranslationUUID is the id of the (block, locale) translation row.
func BlockTranslationUUID(blockID uuid.UUID, locale string) uuid.UUID {
	return UUID(namespace + ":block_translation:" + blockID.String() + ":" + NormalizeLocale(locale))
}

// ImportedPageUUID gives seed documents a stable page id per slug.
func ImportedPageUUID(slug string) uuid.UUID {
	return UUID(namespace + ":import:page:" + strings.ToLower(strings.TrimSpace(slug)))
}

// ImportedBlockUUID gives seed blocks a stable id per (page, key).
func ImportedBlockUUID(pageID uuid.UUID, key string) uuid.UUID {
	return UUID(namespace + ":import:block:" + pageID.String() + ":" + strings.TrimSpace(key))
}
