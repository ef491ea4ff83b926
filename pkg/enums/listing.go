package enums

import "fmt"

// ListingCategory represents the canonical categories buyers can browse.
type ListingCategory string

const (
	ListingCategoryCars        ListingCategory = "cars"
	ListingCategoryProperties  ListingCategory = "properties"
	ListingCategoryMobiles     ListingCategory = "mobiles"
	ListingCategoryLaptops     ListingCategory = "laptops"
	ListingCategoryJobs        ListingCategory = "jobs"
	ListingCategoryBikes       ListingCategory = "bikes"
	ListingCategoryElectronics ListingCategory = "electronics"
	ListingCategoryCommercial  ListingCategory = "commercial"
	ListingCategoryFurniture   ListingCategory = "furniture"
	ListingCategoryFashion     ListingCategory = "fashion"
	ListingCategoryHobbies     ListingCategory = "hobbies"
	ListingCategoryPets        ListingCategory = "pets"
	ListingCategoryServices    ListingCategory = "services"
)

var validListingCategories = []ListingCategory{
	ListingCategoryCars,
	ListingCategoryProperties,
	ListingCategoryMobiles,
	ListingCategoryLaptops,
	ListingCategoryJobs,
	ListingCategoryBikes,
	ListingCategoryElectronics,
	ListingCategoryCommercial,
	ListingCategoryFurniture,
	ListingCategoryFashion,
	ListingCategoryHobbies,
	ListingCategoryPets,
	ListingCategoryServices,
}

// ListingCategories returns every known category.
func ListingCategories() []ListingCategory {
	out := make([]ListingCategory, len(validListingCategories))
	copy(out, validListingCategories)
	return out
}

// String implements fmt.Stringer.
func (c ListingCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ListingCategory.
func (c ListingCategory) IsValid() bool {
	for _, candidate := range validListingCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseListingCategory converts raw input into a ListingCategory.
func ParseListingCategory(value string) (ListingCategory, error) {
	for _, candidate := range validListingCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing category %q", value)
}

// ListingStatus tracks where a listing sits in its sale lifecycle.
type ListingStatus string

const (
	ListingStatusActive         ListingStatus = "active"
	ListingStatusPendingPayment ListingStatus = "pending_payment"
	ListingStatusExpired        ListingStatus = "expired"
	ListingStatusSold           ListingStatus = "sold"
)

var validListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusPendingPayment,
	ListingStatusExpired,
	ListingStatusSold,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
