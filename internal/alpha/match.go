// Package alpha computes per-player bounded adjustments from baseline
// projections and resolved feeds (C3), and fuses them with recent form
// into a final blended projection (C4).
package alpha

import (
	"math"
	"strings"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
)

// MatchPlayerByName resolves a feed-reported player name/team to the
// closest roster player, using Levenshtein-distance similarity with
// initial and suffix-variation adjustments. Returns nil and score 0
// when no candidate clears the 0.6 combined-score floor.
func MatchPlayerByName(feedName, feedTeam string, candidates []domain.Player) (*domain.Player, float64) {
	var best *domain.Player
	bestScore := 0.0

	feedNameNorm := strings.ToLower(strings.TrimSpace(feedName))
	feedTeamNorm := normalizeTeam(strings.ToLower(strings.TrimSpace(feedTeam)))

	for i := range candidates {
		p := &candidates[i]
		playerNameNorm := strings.ToLower(strings.TrimSpace(p.Name))
		playerTeamNorm := normalizeTeam(strings.ToLower(strings.TrimSpace(p.ProTeamID)))

		nameScore := calculateSimilarity(feedNameNorm, playerNameNorm)
		nameScore = adjustForNameVariations(feedNameNorm, playerNameNorm, nameScore)
		teamScore := calculateSimilarity(feedTeamNorm, playerTeamNorm)

		combined := (nameScore * 0.7) + (teamScore * 0.3)
		if combined > bestScore && combined > 0.6 {
			bestScore = combined
			best = p
		}
	}
	return best, bestScore
}

func calculateSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	distance := levenshteinDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - (float64(distance) / float64(maxLen))
}

func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	rows, cols := len(r1)+1, len(r2)+1

	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			d[i][j] = minInt(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
		}
	}
	return d[rows-1][cols-1]
}

func minInt(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

func adjustForNameVariations(feedName, playerName string, baseScore float64) float64 {
	if isInitialVariation(feedName, playerName) {
		return math.Max(baseScore, 0.9)
	}
	if isSuffixVariation(feedName, playerName) {
		return math.Max(baseScore, 0.95)
	}
	return baseScore
}

func isInitialVariation(name1, name2 string) bool {
	parts1 := strings.Fields(name1)
	parts2 := strings.Fields(name2)
	if len(parts1) != len(parts2) {
		return false
	}
	for i := range parts1 {
		p1, p2 := parts1[i], parts2[i]
		switch {
		case len(p1) == 2 && strings.HasSuffix(p1, ".") && len(p2) > 2:
			if strings.ToLower(p1[:1]) != strings.ToLower(p2[:1]) {
				return false
			}
		case len(p2) == 2 && strings.HasSuffix(p2, ".") && len(p1) > 2:
			if strings.ToLower(p2[:1]) != strings.ToLower(p1[:1]) {
				return false
			}
		case strings.ToLower(p1) != strings.ToLower(p2):
			return false
		}
	}
	return true
}

func isSuffixVariation(name1, name2 string) bool {
	suffixes := []string{"jr.", "sr.", "jr", "sr", "ii", "iii", "iv"}
	for _, suffix := range suffixes {
		if strings.HasSuffix(name1, suffix) && !strings.HasSuffix(name2, suffix) {
			if strings.TrimSpace(strings.TrimSuffix(name1, suffix)) == name2 {
				return true
			}
		}
		if strings.HasSuffix(name2, suffix) && !strings.HasSuffix(name1, suffix) {
			if strings.TrimSpace(strings.TrimSuffix(name2, suffix)) == name1 {
				return true
			}
		}
	}
	return false
}

// normalizeTeam maps common pro-team abbreviation aliases so feed
// sources that spell a team differently than the league collaborator
// still match (e.g. "WSH" vs "WAS").
func normalizeTeam(team string) string {
	aliases := map[string]string{
		"wsh": "was",
		"jax": "jac",
		"lar": "la",
		"lv":  "lvr",
	}
	if normalized, ok := aliases[team]; ok {
		return normalized
	}
	return team
}
