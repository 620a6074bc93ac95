package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cybersib/cybersib/internal/common"
)

// RankTier is one step of the ladder: users with at least MinPoints carry Title.
type RankTier struct {
	MinPoints int    `json:"min_points" yaml:"min_points"`
	Title     string `json:"title" yaml:"title"`
}

// RankLadder maps point totals to rank titles. Tiers are kept sorted by
// MinPoints ascending and the lowest tier always starts at 0.
type RankLadder struct {
	tiers []RankTier
}

// DefaultRankTiers is the ladder used when configuration names none.
func DefaultRankTiers() []RankTier {
	return []RankTier{
		{MinPoints: 0, Title: "Beginner"},
		{MinPoints: 100, Title: "Intermediate"},
		{MinPoints: 500, Title: "Advanced"},
		{MinPoints: 1000, Title: "Professional"},
		{MinPoints: 1500, Title: "Expert"},
		{MinPoints: 2000, Title: "Elite"},
	}
}

// DefaultRankLadder returns the built-in ladder.
func DefaultRankLadder() RankLadder {
	l, _ := NewRankLadder(DefaultRankTiers())
	return l
}

// NewRankLadder validates and sorts tiers.
func NewRankLadder(tiers []RankTier) (RankLadder, error) {
	if len(tiers) == 0 {
		return RankLadder{}, common.NewValidationError("rank ladder needs at least one tier")
	}

	sorted := make([]RankTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinPoints < sorted[j].MinPoints })

	var rules []string
	if sorted[0].MinPoints != 0 {
		rules = append(rules, "lowest rank tier must start at 0 points")
	}
	for i, t := range sorted {
		if strings.TrimSpace(t.Title) == "" {
			rules = append(rules, fmt.Sprintf("rank tier at %d points has no title", t.MinPoints))
		}
		if i > 0 && sorted[i-1].MinPoints == t.MinPoints {
			rules = append(rules, fmt.Sprintf("duplicate rank threshold %d", t.MinPoints))
		}
	}
	if err := common.NewValidationError(rules...); err != nil {
		return RankLadder{}, err
	}
	return RankLadder{tiers: sorted}, nil
}

// Tiers returns a copy of the ladder, lowest first.
func (l RankLadder) Tiers() []RankTier {
	out := make([]RankTier, len(l.ladder()))
	copy(out, l.ladder())
	return out
}

// Index returns the position of the tier that points falls in.
func (l RankLadder) Index(points int) int {
	tiers := l.ladder()
	idx := sort.Search(len(tiers), func(i int) bool { return tiers[i].MinPoints > points })
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// Rank returns the title for the given point total.
func (l RankLadder) Rank(points int) string {
	return l.ladder()[l.Index(points)].Title
}

// Lowest returns the entry-level title.
func (l RankLadder) Lowest() string {
	return l.ladder()[0].Title
}

// Next returns the tier after the one points falls in and how many points
// are missing to reach it. ok is false at the top of the ladder.
func (l RankLadder) Next(points int) (tier RankTier, needed int, ok bool) {
	tiers := l.ladder()
	idx := l.Index(points)
	if idx+1 >= len(tiers) {
		return RankTier{}, 0, false
	}
	next := tiers[idx+1]
	return next, next.MinPoints - points, true
}

// ladder falls back to the defaults for the zero value.
func (l RankLadder) ladder() []RankTier {
	if len(l.tiers) == 0 {
		return DefaultRankTiers()
	}
	return l.tiers
}
