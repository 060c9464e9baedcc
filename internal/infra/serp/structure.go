package serp

import (
	"strings"
	"unicode/utf8"

	"seoforge/internal/domain/entity"
	"seoforge/internal/infra/seodata"
)

const maxFAQItems = 10

// Heading pattern names, counted across the organic result titles.
const (
	PatternDefinition     = "definition"
	PatternHowTo          = "how_to"
	PatternRecommendation = "recommendation"
	PatternComparison     = "comparison"
)

// patternMarkers maps each pattern to the title substrings that signal it.
// The Japanese markers carry the weight for the target market; the English
// ones cover mixed-language results.
var patternMarkers = map[string][]string{
	PatternDefinition:     {"とは", "what is"},
	PatternHowTo:          {"選び方", "方法", "how to", "guide"},
	PatternRecommendation: {"おすすめ", "ランキング", "best", "top "},
	PatternComparison:     {"比較", " vs ", "versus", "comparison"},
}

// BuildStructure derives the aggregate shape of a results page: which
// title patterns dominate, the People-Also-Ask questions, and the average
// organic title length in runes.
func BuildStructure(page *seodata.SerpPage) entity.SerpStructure {
	s := entity.SerpStructure{
		HeadingPatterns: map[string]int{
			PatternDefinition:     0,
			PatternHowTo:          0,
			PatternRecommendation: 0,
			PatternComparison:     0,
		},
		TotalResults: len(page.Items),
	}

	var organicCount, titleRunes int
	for _, item := range page.Items {
		if item.Type == "people_also_ask" {
			for _, q := range item.Questions {
				if len(s.FAQItems) < maxFAQItems {
					s.FAQItems = append(s.FAQItems, q)
				}
			}
			continue
		}
		if item.Type != "organic" {
			continue
		}

		organicCount++
		titleRunes += utf8.RuneCountInString(item.Title)

		title := strings.ToLower(item.Title)
		for pattern, markers := range patternMarkers {
			for _, m := range markers {
				if strings.Contains(title, m) {
					s.HeadingPatterns[pattern]++
					break
				}
			}
		}
	}

	if organicCount > 0 {
		s.AvgTitleLength = float64(titleRunes) / float64(organicCount)
	}
	return s
}
