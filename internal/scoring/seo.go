package scoring

import (
	"math"

	"siteintel/internal/models"
)

const (
	WeightTitle              = 15.0
	WeightTitleOptimal       = 10.0
	WeightDescription        = 15.0
	WeightDescriptionOptimal = 10.0
	WeightH1                 = 10.0
	WeightSingleH1           = 5.0
	WeightH2                 = 5.0
	WeightCanonical          = 5.0
	WeightOpenGraph          = 10.0
	WeightTwitterCard        = 5.0
	WeightStructuredData     = 5.0
	WeightHTTPS              = 5.0
	TitleMinLength           = 30
	TitleMaxLength           = 60
	DescriptionMinLength     = 120
	DescriptionMaxLength     = 160
)

// TitleOptimal reports whether a title length is within the recommended range.
func TitleOptimal(n int) bool {
	return n >= TitleMinLength && n <= TitleMaxLength
}

func DescriptionOptimal(n int) bool {
	return n >= DescriptionMinLength && n <= DescriptionMaxLength
}

// ScoreSEO sums the weights of the checks a page passes and clamps the total
// to 0..100. The breakdown lists every weight that contributed.
func ScoreSEO(s models.SEOSignals) (int, models.Grade, map[string]float64) {
	score := 0.0
	breakdown := make(map[string]float64)

	add := func(ok bool, key string, w float64) {
		if ok {
			score += w
			breakdown[key] = w
		}
	}

	add(s.HasTitle, "title", WeightTitle)
	add(s.HasTitle && TitleOptimal(s.TitleLength), "title_optimal", WeightTitleOptimal)
	add(s.HasDescription, "description", WeightDescription)
	add(s.HasDescription && DescriptionOptimal(s.DescriptionLength), "description_optimal", WeightDescriptionOptimal)
	add(s.H1Count > 0, "h1", WeightH1)
	add(s.H1Count == 1, "single_h1", WeightSingleH1)
	add(s.HasH2, "h2", WeightH2)
	add(s.HasCanonical, "canonical", WeightCanonical)
	add(s.HasOpenGraph, "open_graph", WeightOpenGraph)
	add(s.HasTwitterCard, "twitter_card", WeightTwitterCard)
	add(s.HasStructuredData, "structured_data", WeightStructuredData)
	add(s.IsHTTPS, "https", WeightHTTPS)

	final := int(math.Round(math.Max(0, math.Min(100, score))))
	return final, Grade(final), breakdown
}

// Grade maps a score to a letter. Every integer maps to exactly one grade.
func Grade(score int) models.Grade {
	switch {
	case score >= 90:
		return models.GradeA
	case score >= 75:
		return models.GradeB
	case score >= 60:
		return models.GradeC
	case score >= 40:
		return models.GradeD
	default:
		return models.GradeF
	}
}
