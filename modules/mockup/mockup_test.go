package mockup

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/listing"
)

func sampleAnalysis() *model.AnalysisResult {
	return &model.AnalysisResult{
		Theme:          "Boho Wedding Invitation",
		DominantColors: []string{"#D4A373", "#FAEDCD", "#FEFAE0", "#E9EDC9", "#CCD5AE"},
		KeyText:        []string{"Save the Date"},
		EventType:      "Wedding",
		ProductType:    "Digital Template",
	}
}

func TestBindImagesHeroGetsAll(t *testing.T) {
	uploads := []model.EncodedImage{
		{MimeType: "image/png"},
		{MimeType: "image/jpeg"},
		{MimeType: "image/png"},
	}

	bound := BindImages(0, uploads)
	assert.Equal(t, uploads, bound)
}

func TestBindImagesRoundRobin(t *testing.T) {
	for n := 1; n <= 5; n++ {
		uploads := make([]model.EncodedImage, n)
		for i := range uploads {
			uploads[i] = model.EncodedImage{Data: []byte{byte(i)}, MimeType: "image/png"}
		}

		for index := 1; index < PromptCount; index++ {
			bound := BindImages(index, uploads)
			require.Len(t, bound, 1, "n=%d index=%d", n, index)
			assert.Equal(t, uploads[(index-1)%n], bound[0], "n=%d index=%d", n, index)
		}
	}
}

func TestBindImagesSingleUploadAlwaysSame(t *testing.T) {
	uploads := []model.EncodedImage{{Data: []byte{1}, MimeType: "image/png"}}

	for index := 0; index < PromptCount; index++ {
		bound := BindImages(index, uploads)
		require.NotEmpty(t, bound)
		assert.Equal(t, uploads[0], bound[len(bound)-1])
	}
}

func TestBindImagesEmptyUploads(t *testing.T) {
	assert.Nil(t, BindImages(0, nil))
	assert.Nil(t, BindImages(3, nil))
}

func TestBuildPlannerPromptUsesCategoryShotList(t *testing.T) {
	analysis := sampleAnalysis()
	prompt := buildPlannerPrompt(analysis, listing.CategoryDigitalTemplate)

	assert.Contains(t, prompt, "DIGITAL TEMPLATE")
	assert.Contains(t, prompt, "Hero Thumbnail")
	assert.Contains(t, prompt, "Boho Wedding Invitation")
	assert.Contains(t, prompt, "#D4A373")

	svgPrompt := buildPlannerPrompt(analysis, listing.CategorySVG)
	assert.Contains(t, svgPrompt, "Cricut/Silhouette Mockup")
	assert.NotContains(t, svgPrompt, "Hero Thumbnail")
}

func TestCategoryShotListsCoverAllCategories(t *testing.T) {
	all := []listing.Category{
		listing.CategoryPhysical, listing.CategoryDigitalTemplate, listing.CategoryPrintable,
		listing.CategorySVG, listing.CategoryStickers, listing.CategoryJewelry,
		listing.CategoryClothing, listing.CategoryHomeDecor, listing.CategoryVintage,
		listing.CategoryCraftSupplies,
	}
	for _, c := range all {
		shotList := categoryShotLists[c]
		require.NotEmpty(t, shotList, "category %s has no shot list", c)
		assert.Contains(t, shotList, fmt.Sprintf("Generate %d prompts", PromptCount))
		assert.Contains(t, shotList, "10.")
	}
}

func TestBuildRenderPromptBundleVsSingle(t *testing.T) {
	single := buildRenderPrompt("on a coffee table", 1)
	assert.Contains(t, single, "single provided product design")
	assert.Contains(t, single, "100% accuracy")
	assert.Contains(t, single, "Creative Prompt: on a coffee table")
	assert.False(t, strings.Contains(single, "%s"), "format verb leaked into prompt")

	bundle := buildRenderPrompt("on a coffee table", 3)
	assert.Contains(t, bundle, `composite "bundle" or "collection" image`)
	assert.Contains(t, bundle, "DO NOT redraw, regenerate, blend")
}
