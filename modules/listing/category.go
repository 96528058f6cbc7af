package listing

import "strings"

// Category - Etsy 제품 카테고리 (닫힌 집합).
// 모델이 돌려준 자유 텍스트는 ParseCategory에서 딱 한 번 정규화하고,
// 이후의 모든 분기는 이 enum으로만 한다.
type Category int

const (
	CategoryPhysical Category = iota // fallback
	CategoryDigitalTemplate
	CategoryPrintable
	CategorySVG
	CategoryStickers
	CategoryJewelry
	CategoryClothing
	CategoryHomeDecor
	CategoryVintage
	CategoryCraftSupplies
)

func (c Category) String() string {
	switch c {
	case CategoryDigitalTemplate:
		return "Digital Template"
	case CategoryPrintable:
		return "Printable Art"
	case CategorySVG:
		return "SVG/Cut File"
	case CategoryStickers:
		return "Stickers"
	case CategoryJewelry:
		return "Jewelry & Accessories"
	case CategoryClothing:
		return "Clothing & Apparel"
	case CategoryHomeDecor:
		return "Home & Living"
	case CategoryVintage:
		return "Vintage"
	case CategoryCraftSupplies:
		return "Craft Supplies"
	default:
		return "Physical Product"
	}
}

// ParseCategory - 모델이 돌려준 productType 문자열을 카테고리로 정규화.
// 먼저 나오는 규칙이 이긴다. 아무것도 안 맞으면 Physical Product.
func ParseCategory(productType string) Category {
	p := strings.ToLower(productType)

	contains := func(subs ...string) bool {
		for _, sub := range subs {
			if strings.Contains(p, sub) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("digital", "template"):
		return CategoryDigitalTemplate
	case contains("printable"):
		return CategoryPrintable
	case contains("svg", "cut file"):
		return CategorySVG
	case contains("sticker"):
		return CategoryStickers
	case contains("jewelry", "accessor"):
		return CategoryJewelry
	case contains("clothing", "apparel"):
		return CategoryClothing
	case contains("home", "living"):
		return CategoryHomeDecor
	case contains("vintage"):
		return CategoryVintage
	case contains("craft", "supplies"):
		return CategoryCraftSupplies
	default:
		return CategoryPhysical
	}
}
