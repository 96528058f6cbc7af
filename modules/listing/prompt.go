package listing

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"etsy-optimizer-server/modules/common/model"
)

// 카테고리별 판매 포인트 지시문
var categoryContext = map[Category]string{
	CategoryDigitalTemplate: "This is an EDITABLE CANVA TEMPLATE. Emphasize: instant download, easy customization, lifetime access, no Canva Pro required.",
	CategoryPrintable:       "This is PRINTABLE ART. Emphasize: instant download, high resolution, multiple sizes, print-ready files.",
	CategorySVG:             "This is an SVG/CUT FILE for Cricut/Silhouette. Emphasize: compatible formats (SVG, PNG, DXF, EPS), instant download, scalable.",
	CategoryStickers:        "These are STICKERS. Emphasize: material quality (vinyl, matte, glossy), waterproof, size options, uses (laptop, water bottle, planner).",
	CategoryJewelry:         "This is JEWELRY/ACCESSORIES. Emphasize: materials (sterling silver, gold-filled, gemstones), dimensions, hypoallergenic, gift-ready packaging.",
	CategoryClothing:        "This is CLOTHING/APPAREL. Emphasize: fabric composition, sizing, care instructions, print/embroidery quality, fit description.",
	CategoryHomeDecor:       "This is HOME & LIVING. Emphasize: dimensions, materials, installation/display options, room styling ideas, care instructions.",
	CategoryVintage:         "This is VINTAGE. Emphasize: age/era, condition details, provenance, measurements, authenticity. Be honest about imperfections.",
	CategoryCraftSupplies:   "These are CRAFT SUPPLIES. Emphasize: quantity, dimensions/weights, material, suggested uses, compatibility with other supplies.",
	CategoryPhysical:        "This is a PHYSICAL PRODUCT. Emphasize: materials, dimensions, quality craftsmanship, shipping details, handmade aspects.",
}

// buildCopyPrompt - 분석 결과 기반 리스팅 카피 생성 프롬프트
func buildCopyPrompt(analysis *model.AnalysisResult, category Category) string {
	return fmt.Sprintf(`%s

Based on the following product analysis, generate compelling Etsy listing copy.
Analysis:
- Theme: %s
- Product Type: %s
- Occasion/Use: %s
- Key Elements: %s

Follow Etsy's latest SEO guidelines. Create:
- ONE concise, keyword-rich title (under 140 characters)
- ONE comprehensive description with clear sections and emoji bullet points
- 13 optimized multi-word tags (each under 20 characters)
- A materials list appropriate for this product type (each under 20 characters)`,
		categoryContext[category],
		analysis.Theme,
		analysis.ProductType,
		analysis.EventType,
		strings.Join(analysis.KeyText, ", "))
}

var copySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {
			Type:        genai.TypeString,
			Description: "One highly-optimized, concise Etsy title (under 140 characters) that uses natural language SEO. Clearly state the product type and key benefits.",
		},
		"description": {
			Type:        genai.TypeString,
			Description: "A comprehensive Etsy description. Start with a strong hook. Use emoji-prefixed bullet points to detail what's included, key features, and benefits. Include relevant sections like 'How It Works', 'What You Receive', shipping info, or care instructions as appropriate.",
		},
		"tags": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Exactly 13 SEO-optimized, multi-word Etsy tags. CRITICAL: Each tag MUST be 20 characters or less (including spaces). Include product-specific keywords and trending search terms relevant to the theme and style.",
		},
		"materials": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of materials for Etsy's materials field. CRITICAL: Each material MUST be 20 characters or less (including spaces). Use materials appropriate to the product type.",
		},
	},
	Required: []string{"title", "description", "tags", "materials"},
}
