package listings

import (
	"encoding/json"
	"strings"

	"github.com/shopperssay/backend/pkg/db/models"
)

// PlaceholderImageURL is served when a listing has no usable image.
const PlaceholderImageURL = "https://placehold.co/400x300?text=No+Image"

// Entries at or below this length are junk left over from imports
// ("null", "[]", bare filenames) and are dropped.
const minImageURLLength = 10

// ImageURLList merges the three image columns into one deduplicated list.
// image_urls wins over the legacy columns; the placeholder is returned when
// nothing usable survives.
func ImageURLList(listing models.Listing) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, column := range []*string{listing.ImageURLs, listing.ImageURL, listing.ImageURLAlt} {
		for _, candidate := range parseImageColumn(column) {
			candidate = strings.TrimSpace(candidate)
			if len(candidate) <= minImageURLLength {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			seen[candidate] = struct{}{}
			out = append(out, candidate)
		}
	}

	if len(out) == 0 {
		return []string{PlaceholderImageURL}
	}
	return out
}

// PrimaryImageURL returns the first usable image, or the placeholder.
func PrimaryImageURL(listing models.Listing) string {
	return ImageURLList(listing)[0]
}

// EncodeImageURLs serializes the canonical image_urls column. Writers only
// ever produce a JSON array; the other formats exist for reads alone.
func EncodeImageURLs(urls []string) *string {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if len(u) <= minImageURLLength {
			continue
		}
		cleaned = append(cleaned, u)
	}
	if len(cleaned) == 0 {
		return nil
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil
	}
	encoded := string(raw)
	return &encoded
}

// parseImageColumn accepts the three shapes found in imported rows: a JSON
// array of strings, a Postgres array literal, or a bare URL.
func parseImageColumn(column *string) []string {
	if column == nil {
		return nil
	}
	raw := strings.TrimSpace(*column)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err == nil {
			return urls
		}
		return nil
	}

	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, "{"), "}")
		if inner == "" {
			return nil
		}
		parts := strings.Split(inner, ",")
		urls := make([]string, 0, len(parts))
		for _, part := range parts {
			urls = append(urls, strings.Trim(strings.TrimSpace(part), `"`))
		}
		return urls
	}

	return []string{raw}
}
