package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/davidrmz/cotejo/internal/models"
)

// The explanation narrative carries per-dimension sub-scores as lines of
// the form "SIMILITUD LÉXICA: 80". "SIMILITUD GENERAL" is the overall
// score, not a dimension.
var dimensionRe = regexp.MustCompile(`(?i)SIMILITUD\s+([\p{L} ]+?)\s*:\s*(\d{1,3})`)

// ParseNarrative extracts per-dimension sub-scores and the overall score
// from a similarity explanation. The overall score is -1 when the
// narrative carries no "SIMILITUD GENERAL" line. Scores outside 0-100
// are dropped. Unknown dimension names pass through as-is.
func ParseNarrative(explanation string) ([]models.DimensionScore, int) {
	matches := dimensionRe.FindAllStringSubmatch(explanation, -1)

	var dims []models.DimensionScore
	general := -1

	for _, m := range matches {
		name := strings.ToLower(strings.TrimSpace(m[1]))
		score, err := strconv.Atoi(m[2])
		if err != nil || score < 0 || score > 100 {
			continue
		}

		if name == "general" {
			general = score
			continue
		}

		dims = append(dims, models.DimensionScore{Dimension: name, Score: score})
	}

	return dims, general
}
