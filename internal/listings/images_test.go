package listings

import (
	"testing"

	"github.com/shopperssay/backend/pkg/db/models"
)

func strPtr(s string) *string {
	return &s
}

func TestImageURLListJSONArray(t *testing.T) {
	listing := models.Listing{
		ImageURLs: strPtr(`["https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"]`),
	}
	urls := ImageURLList(listing)
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls got %v", urls)
	}
	if urls[0] != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected first url %s", urls[0])
	}
}

func TestImageURLListPostgresArray(t *testing.T) {
	listing := models.Listing{
		ImageURLs: strPtr(`{"https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"}`),
	}
	urls := ImageURLList(listing)
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls got %v", urls)
	}
}

func TestImageURLListBareURL(t *testing.T) {
	listing := models.Listing{
		ImageURL: strPtr("https://cdn.example.com/only.jpg"),
	}
	urls := ImageURLList(listing)
	if len(urls) != 1 || urls[0] != "https://cdn.example.com/only.jpg" {
		t.Fatalf("unexpected urls %v", urls)
	}
}

func TestImageURLListMergesColumns(t *testing.T) {
	listing := models.Listing{
		ImageURLs:   strPtr(`["https://cdn.example.com/a.jpg"]`),
		ImageURL:    strPtr("https://cdn.example.com/b.jpg"),
		ImageURLAlt: strPtr("https://cdn.example.com/a.jpg"),
	}
	urls := ImageURLList(listing)
	if len(urls) != 2 {
		t.Fatalf("expected deduplicated merge got %v", urls)
	}
	if urls[0] != "https://cdn.example.com/a.jpg" || urls[1] != "https://cdn.example.com/b.jpg" {
		t.Fatalf("unexpected order %v", urls)
	}
}

func TestImageURLListDropsJunk(t *testing.T) {
	listing := models.Listing{
		ImageURLs: strPtr(`["null","x.jpg","","https://cdn.example.com/real.jpg"]`),
	}
	urls := ImageURLList(listing)
	if len(urls) != 1 || urls[0] != "https://cdn.example.com/real.jpg" {
		t.Fatalf("junk entries must be dropped, got %v", urls)
	}
}

func TestImageURLListPlaceholder(t *testing.T) {
	for name, listing := range map[string]models.Listing{
		"empty columns": {},
		"junk only":     {ImageURLs: strPtr(`["null"]`), ImageURL: strPtr("x")},
		"empty arrays":  {ImageURLs: strPtr(`[]`), ImageURLAlt: strPtr(`{}`)},
	} {
		urls := ImageURLList(listing)
		if len(urls) != 1 || urls[0] != PlaceholderImageURL {
			t.Fatalf("%s: expected placeholder got %v", name, urls)
		}
	}
}

func TestPrimaryImageURL(t *testing.T) {
	listing := models.Listing{
		ImageURLs: strPtr(`["https://cdn.example.com/a.jpg","https://cdn.example.com/b.jpg"]`),
	}
	if got := PrimaryImageURL(listing); got != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected primary image %s", got)
	}
	if got := PrimaryImageURL(models.Listing{}); got != PlaceholderImageURL {
		t.Fatalf("expected placeholder got %s", got)
	}
}

func TestEncodeImageURLs(t *testing.T) {
	encoded := EncodeImageURLs([]string{" https://cdn.example.com/a.jpg ", "short", ""})
	if encoded == nil {
		t.Fatal("expected encoded column")
	}
	if *encoded != `["https://cdn.example.com/a.jpg"]` {
		t.Fatalf("unexpected encoding %s", *encoded)
	}

	if EncodeImageURLs(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
	if EncodeImageURLs([]string{"tiny"}) != nil {
		t.Fatal("expected nil when nothing survives")
	}
}
