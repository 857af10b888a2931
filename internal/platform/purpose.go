package platform

import (
	"slices"
	"strings"

	"siteintel/internal/models"
	"siteintel/internal/patterns"
)

// ClassifyPurpose walks patterns.PurposeRules in order. text is the visible
// page text, matched case-insensitively.
func ClassifyPurpose(p models.Platform, text string) models.Purpose {
	t := strings.ToLower(text)
	for _, r := range patterns.PurposeRules {
		if slices.Contains(r.Platforms, p) {
			return r.Purpose
		}
		hits := 0
		for _, k := range r.Keywords {
			if strings.Contains(t, k) {
				hits++
			}
		}
		if hits >= r.MinHits {
			return r.Purpose
		}
	}
	return models.PurposeGeneral
}
