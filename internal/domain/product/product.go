package product

// Category is the closed set of storefront categories.
type Category string

const (
	CategoryTops        Category = "TOPS"
	CategoryBottoms     Category = "BOTTOMS"
	CategoryShoes       Category = "SHOES"
	CategoryAccessories Category = "ACCESSORIES"
)

var categoryLabels = map[Category]string{
	CategoryTops:        "Tops",
	CategoryBottoms:     "Bottoms",
	CategoryShoes:       "Shoes",
	CategoryAccessories: "Accessories",
}

func Categories() []Category {
	return []Category{CategoryTops, CategoryBottoms, CategoryShoes, CategoryAccessories}
}

func ParseCategory(value string) (Category, bool) {
	c := Category(value)
	_, ok := categoryLabels[c]
	return c, ok
}

func (c Category) Label() string {
	return categoryLabels[c]
}

func (c Category) String() string {
	return string(c)
}

// Status controls storefront visibility. A PUBLISHED product with zero
// stock stays visible but cannot be purchased.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusDraft, StatusPublished:
		return Status(value), true
	default:
		return "", false
	}
}

func (s Status) String() string {
	return string(s)
}
