package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// NamePolicy decides whether a product name belongs to a category the store carries.
type NamePolicy func(name string) bool

// AllowAll admits every product name.
func AllowAll(string) bool { return true }

// ApparelKeywords is the women's apparel allow-list the store has historically used.
var ApparelKeywords = []string{
	"Kurti", "Saree", "Top", "Skirt", "Dress", "Jacket", "Sari",
	"T-shirt", "Pant", "Blouse", "Frock", "Ladies", "Women",
}

// KeywordPolicy admits names containing any keyword, compared case-insensitively.
// With no usable keywords it admits everything.
func KeywordPolicy(keywords ...string) NamePolicy {
	folder := cases.Fold()
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		folded = append(folded, folder.String(kw))
	}
	if len(folded) == 0 {
		return AllowAll
	}
	return func(name string) bool {
		target := cases.Fold().String(name)
		for _, kw := range folded {
			if strings.Contains(target, kw) {
				return true
			}
		}
		return false
	}
}
