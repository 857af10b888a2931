package scoring

import (
	"sort"
	"strings"

	"siteintel/internal/models"
)

const (
	// BonusBase and BonusStep give rank N a bonus of BonusBase - BonusStep*N.
	BonusBase = 110
	BonusStep = 10

	// DefaultBonusFloor bounds the bonus for long priority lists. Ranks past
	// ten would otherwise earn nothing or go negative.
	DefaultBonusFloor = 10

	DefaultMaxEmails = 5
)

// Base scores stay below BonusStep so that a higher priority rank always wins
// over a better source.
var sourceScores = map[models.ContactSource]int{
	models.SourceMailto:     8,
	models.SourceStructured: 6,
	models.SourceAttribute:  5,
	models.SourceObfuscated: 4,
	models.SourceText:       2,
}

// BaseScore returns the quality score for where a candidate was found.
func BaseScore(src models.ContactSource) int {
	return sourceScores[src]
}

type EmailConfig struct {
	BonusFloor int
	MaxEmails  int
}

func DefaultEmailConfig() EmailConfig {
	return EmailConfig{BonusFloor: DefaultBonusFloor, MaxEmails: DefaultMaxEmails}
}

// PriorityBonus returns the bonus for a 1-indexed pattern rank.
func (c EmailConfig) PriorityBonus(rank int) int {
	b := BonusBase - BonusStep*rank
	if b < c.BonusFloor {
		return c.BonusFloor
	}
	return b
}

// MatchPattern reports whether email satisfies one priority pattern.
// "info@" matches local parts starting with "info", "@gmail.com" matches the
// domain or a subdomain of it, anything else is a substring match.
func MatchPattern(email, pattern string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	p := strings.ToLower(strings.TrimSpace(pattern))
	if p == "" {
		return false
	}

	at := strings.LastIndex(e, "@")
	switch {
	case strings.HasSuffix(p, "@") && !strings.HasPrefix(p, "@"):
		return at >= 0 && strings.HasPrefix(e[:at], strings.TrimSuffix(p, "@"))
	case strings.HasPrefix(p, "@"):
		if at < 0 {
			return false
		}
		domain := e[at+1:]
		want := p[1:]
		return domain == want || strings.HasSuffix(domain, "."+want)
	default:
		return strings.Contains(e, p)
	}
}

// MatchRank returns the 1-indexed rank of the first pattern email matches,
// or 0 when none does.
func MatchRank(email string, priority []string) int {
	for i, p := range priority {
		if MatchPattern(email, p) {
			return i + 1
		}
	}
	return 0
}

type rankedEmail struct {
	value string
	score int
	order int
}

// RankEmails orders candidates by base score plus the bonus of their first
// matching priority pattern. Equal scores keep extraction order. An empty
// priority list uses models.DefaultEmailPriority.
func RankEmails(candidates []models.ContactCandidate, priority []string, cfg EmailConfig) []string {
	if len(priority) == 0 {
		priority = models.DefaultEmailPriority
	}

	ranked := make([]rankedEmail, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		key := strings.ToLower(c.Value)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		score := c.BaseScore
		if score == 0 {
			score = BaseScore(c.Source)
		}
		if rank := MatchRank(c.Value, priority); rank > 0 {
			score += cfg.PriorityBonus(rank)
		}
		ranked = append(ranked, rankedEmail{value: c.Value, score: score, order: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	limit := len(ranked)
	if cfg.MaxEmails > 0 && limit > cfg.MaxEmails {
		limit = cfg.MaxEmails
	}
	out := make([]string, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, r.value)
	}
	return out
}
