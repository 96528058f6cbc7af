package mockup

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/listing"
)

// PromptCount - 플래너가 반환해야 하는 목업 아이디어 수
const PromptCount = 10

// 카테고리별 10컷 구성안. 플래너가 이 구성을 따라 프롬프트를 만든다.
var categoryShotLists = map[listing.Category]string{
	listing.CategoryDigitalTemplate: `This is a DIGITAL TEMPLATE (editable in Canva). Generate 10 prompts:
1. Hero Thumbnail - Premium bundle shot on modern surface
2. What's Included Infographic - List of deliverables
3. How It Works Infographic - 3-step guide
4. Editable Features Infographic - Callouts showing editable elements
5. Lifestyle Mockup - Design in context
6. Device Mockup - Phone & tablet with Canva app
7. Desktop Mockup - Laptop with Canva interface
8. Social Media Preview - Instagram post mockup
9. Thank You Card - Matching review request card
10. Print & Share Ideas - Options infographic`,

	listing.CategoryPrintable: `This is PRINTABLE ART. Generate 10 prompts:
1. Hero Frame Display - Art in beautiful frame on styled wall
2. Gallery Wall Mockup - Part of curated gallery arrangement
3. Room Context Shot - Art in styled room
4. Size Comparison - Multiple frame sizes
5. Lifestyle Vignette - With plants, books, decor
6. What's Included - File formats and sizes
7. How to Print - Download, print, frame guide
8. Gift Presentation - Wrapped as gift
9. Detail Close-up - Print quality
10. Seasonal Styling - With seasonal decor`,

	listing.CategorySVG: `This is an SVG/CUT FILE. Generate 10 prompts:
1. Hero Product Display - Finished projects on multiple materials
2. Cricut/Silhouette Mockup - On cutting machine
3. T-Shirt Application - Heat transfer vinyl
4. Tumbler/Mug Mockup - Vinyl on drinkware
5. Car Decal Preview - Vehicle sticker
6. Wood Sign Project - Cut or stenciled
7. Paper Craft Application - Card/scrapbook use
8. File Formats Included - SVG, PNG, DXF, EPS
9. Size Scalability - Various sizes
10. Color Variations - Different colors`,

	listing.CategoryStickers: `These are STICKERS. Generate 10 prompts:
1. Hero Sticker Sheet - Collection on clean background
2. Laptop Application - On laptop lid
3. Water Bottle Display - On hydro flask
4. Planner/Journal Use - Decorating pages
5. Phone Case Styling - On or around phone
6. Size Reference - Next to coin/pen
7. Packaging Preview - Ready to ship
8. Material Quality - Vinyl/matte/glossy closeup
9. Weatherproof Demo - With water droplets
10. Gift Set Display - Arranged as gift`,

	listing.CategoryJewelry: `This is JEWELRY/ACCESSORIES. Generate 10 prompts:
1. Hero Product Shot - On elegant display
2. Model Wearing - Showing scale and styling
3. Detail Macro Shot - Craftsmanship closeup
4. Gift Box Presentation - Ready to give
5. Lifestyle Flat Lay - With flowers, fabric
6. Size Reference - Next to ruler/common object
7. Styling Options - Multiple ways to wear
8. Material Close-up - Metal quality/shine
9. Collection Display - With coordinating pieces
10. Occasion Styling - For specific events`,

	listing.CategoryClothing: `This is CLOTHING/APPAREL. Generate 10 prompts:
1. Hero Model Shot - Worn in styled setting
2. Flat Lay Display - With accessories
3. Detail Close-up - Fabric, stitching, print
4. Hanger/Rack Display - On stylish hanger
5. Back View - Showing full garment
6. Styled Outfit - Complete look
7. Size Range - Fit demonstration
8. Folded/Packaged - Ready to ship
9. Lifestyle Action - Model in motion
10. Care Tag/Label - Brand details`,

	listing.CategoryHomeDecor: `This is HOME & LIVING. Generate 10 prompts:
1. Hero Room Setting - In styled room
2. Detail Close-up - Texture and craftsmanship
3. Scale Reference - With furniture
4. Multiple Angles - Front, side, top views
5. Lifestyle Vignette - With decor, plants
6. Seasonal Styling - Holiday/seasonal decor
7. Gift Presentation - Wrapped as gift
8. In-Use Shot - Being used as intended
9. Color/Style Variants - Options available
10. Packaging - How it arrives`,

	listing.CategoryVintage: `This is VINTAGE. Generate 10 prompts:
1. Hero Vintage Shot - Era-appropriate styling
2. Detail Close-ups - Marks, labels, patina
3. Condition Documentation - Any wear/character
4. Size/Scale Reference - With ruler
5. Styled Modern - In modern decor
6. Styled Period - Period-appropriate setting
7. Multiple Angles - Full rotation
8. Functionality Demo - If functional
9. Collection Context - With vintage items
10. Natural Light Shot - True colors`,

	listing.CategoryCraftSupplies: `These are CRAFT SUPPLIES. Generate 10 prompts:
1. Hero Supply Display - Attractively arranged
2. Quantity/Count Shot - How many included
3. Size Reference - Next to ruler
4. Color/Variety Display - Full range
5. Project Example - Finished project
6. Detail Quality - Material closeup
7. Packaging - How they arrive
8. Work in Progress - Being used
9. Compatibility Demo - With tools
10. Comparison Shot - Value demonstration`,

	listing.CategoryPhysical: `This is a PHYSICAL PRODUCT. Generate 10 prompts:
1. Hero Product Shot - Clean, professional
2. Lifestyle Context - In use
3. Detail Close-up - Quality details
4. Scale Reference - Size context
5. Multiple Angles - Various viewpoints
6. Packaging Display - Shipping/gift
7. In-Use Action - Being used
8. Styled Flat Lay - With props
9. Gift Presentation - Gift-ready
10. Feature Highlight - Key benefit`,
}

// buildPlannerPrompt - 분석 결과와 카테고리 구성안을 합쳐 플래너 프롬프트 생성
func buildPlannerPrompt(analysis *model.AnalysisResult, category listing.Category) string {
	colors := strings.Join(analysis.DominantColors, ", ")

	var sb strings.Builder
	fmt.Fprintf(&sb, `Based on the product analysis, generate 10 diverse, creative mockup ideas for an Etsy listing.

Product Analysis:
- Theme: %s
- Product Type: %s
- Occasion/Use: %s
- Dominant Colors: %s
- Key Elements: %s

`,
		analysis.Theme,
		analysis.ProductType,
		analysis.EventType,
		colors,
		strings.Join(analysis.KeyText, ", "))

	sb.WriteString(categoryShotLists[category])

	fmt.Fprintf(&sb, `

For each, generate a detailed AI image prompt incorporating the theme (%s) and colors (%s).`,
		analysis.Theme, colors)

	return sb.String()
}

var plannerSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"prompts": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": {
						Type:        genai.TypeString,
						Description: "A short, descriptive name for the mockup (e.g., 'Coffee Shop Table Mockup').",
					},
					"prompt": {
						Type:        genai.TypeString,
						Description: "A detailed prompt for an AI image generator to create the mockup. This prompt must instruct the AI to place the user's product design into the generated scene and should incorporate the design's theme and style and context.",
					},
				},
				Required: []string{"name", "prompt"},
			},
			Description: "An array of 10 unique and creative mockup prompts.",
		},
	},
	Required: []string{"prompts"},
}

// 목업 렌더 지시문 - 업로드 원본의 내용을 절대 다시 그리지 않도록 강제
const (
	bundleRenderPrompt = `You are a professional mockup generator. Your task is to place the provided product images onto a single background to create a composite "bundle" or "collection" image.
**CRITICAL RULE: You MUST treat the provided images as final, physical prints. DO NOT redraw, regenerate, blend, or alter the content within the images in any way. The text and design on them must be preserved with 100%% accuracy.**
Follow the creative prompt below to determine the background and scene, but apply the critical rule above all else.
Creative Prompt: %s`

	singleRenderPrompt = `You are a professional mockup generator. Your task is to place the single provided product design into a realistic mockup scene.
**CRITICAL RULE: You MUST treat the provided image as a final, physical print. DO NOT redraw, regenerate, or alter the content of the image. The text and design must be preserved with 100%% accuracy.**
Follow the creative prompt below to create the final image.
Creative Prompt: %s`
)

func buildRenderPrompt(prompt string, imageCount int) string {
	if imageCount > 1 {
		return fmt.Sprintf(bundleRenderPrompt, prompt)
	}
	return fmt.Sprintf(singleRenderPrompt, prompt)
}
