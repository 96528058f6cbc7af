package analysis

import "google.golang.org/genai"

// 분석 지시 프롬프트 - 업로드 이미지 전부를 같은 제품의 변형으로 취급
const analysisPrompt = "Analyze this product image(s) for an Etsy listing. Identify: " +
	"1) Theme/style, 2) Dominant colors (5 HEX codes), 3) Key text or descriptive elements, " +
	"4) Occasion/use case, 5) Product category (Digital Template, Printable Art, Stickers, " +
	"SVG/Cut File, Jewelry & Accessories, Clothing & Apparel, Home & Living, Handmade Goods, " +
	"Vintage, Craft Supplies, or Physical Product). " +
	"Multiple images are variations of the same product."

// analysisSchema - 구조화 응답 스키마
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"theme": {
			Type:        genai.TypeString,
			Description: "A concise, marketable description of the design's theme and style, e.g., 'Minimalist Wedding Invitation', '90s Hip Hop Birthday Party'.",
		},
		"dominantColors": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "An array of 5 dominant HEX color codes from the design, from most to least prominent.",
		},
		"keyText": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "An array of key text phrases extracted from the design (e.g., 'You're Invited', 'Save the Date').",
		},
		"eventType": {
			Type:        genai.TypeString,
			Description: "The occasion, use case, or purpose. Examples: 'Home Decor', 'Daily Wear', 'Gift Giving'. Or the specific type of event, e.g., 'Birthday Party', 'Wedding', 'Corporate Event', 'Halloween Party'.",
		},
		"productType": {
			Type:        genai.TypeString,
			Description: "The specific Etsy product category. Must be one of: 'Digital Template', 'Printable Art', 'Stickers', 'SVG/Cut File', 'Jewelry & Accessories', 'Clothing & Apparel', 'Home & Living', 'Handmade Goods', 'Vintage', 'Craft Supplies', 'Physical Product'.",
		},
	},
	Required: []string{"theme", "dominantColors", "keyText", "eventType", "productType"},
}
