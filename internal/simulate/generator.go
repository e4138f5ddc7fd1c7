// Package simulate generates synthetic seasons of rankings and
// performance data for calibrating the scoring curve. Every run is
// reproducible from its seed.
package simulate

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/halverson/rankcast/internal/domain/model"
)

// Pool sizes reflect roughly how many players are fantasy-relevant at
// each position.
var poolSizes = map[model.Position]int{
	model.PositionQB: 32,
	model.PositionRB: 64,
	model.PositionWR: 80,
	model.PositionTE: 40,
}

// Noise scales for generation. Weekly noise is how far actual results
// drift from consensus; tier noise is how far a user's prediction
// drifts from it.
const (
	weeklyNoise        = 3.0
	sitOutChance       = 0.05 // injury or bye in any given week
	topPoints          = 30.0
	pointsPerSlot      = 0.35
	pointsJitter       = 1.5
	defaultRankedCount = 20
)

// tier models a user skill level as prediction noise.
type tier struct {
	name  string
	noise float64
}

// tiers run from sharps to dart throwers. Assignment cycles so every
// run has the full spread.
var tiers = []tier{
	{name: "sharp", noise: 1.5},
	{name: "solid", noise: 3.0},
	{name: "average", noise: 5.0},
	{name: "casual", noise: 9.0},
}

// Season is one full generated dataset: every user ranking and every
// performance record, in submission order.
type Season struct {
	Rankings []model.UserRanking
	Records  []model.PerformanceRecord
}

// Generator produces synthetic seasons from a single seeded random
// source, so equal seeds yield equal seasons.
type Generator struct {
	rng         *rand.Rand
	rankedCount int
	pools       map[model.Position][]string
}

// NewGenerator creates a seeded generator. rankedCount controls how
// many players each user ranks per position; zero means the default.
func NewGenerator(seed int64, rankedCount int) *Generator {
	if rankedCount <= 0 {
		rankedCount = defaultRankedCount
	}

	pools := make(map[model.Position][]string, len(poolSizes))
	for _, pos := range model.Positions() {
		pool := make([]string, poolSizes[pos])
		for i := range pool {
			pool[i] = fmt.Sprintf("%s-%02d", pos, i+1)
		}
		pools[pos] = pool
	}

	return &Generator{
		rng:         rand.New(rand.NewSource(seed)),
		rankedCount: rankedCount,
		pools:       pools,
	}
}

// Season generates rankings and performance records for the given
// number of users and weeks. Users are generated with cycling skill
// tiers; actual results drift from the consensus order week to week.
func (g *Generator) Season(users, weeks int) *Season {
	season := &Season{}

	userIDs := make([]string, users)
	userNoise := make([]float64, users)
	for i := range userIDs {
		t := tiers[i%len(tiers)]
		userIDs[i] = fmt.Sprintf("user-%s-%04d", t.name, i+1)
		userNoise[i] = t.noise
	}

	for week := 1; week <= weeks; week++ {
		for _, pos := range model.Positions() {
			pool := g.pools[pos]

			// Actual weekly order: consensus order plus weekly variance.
			actualOrder := g.perturb(pool, weeklyNoise)
			season.Records = append(season.Records, g.weekRecords(pos, week, actualOrder)...)

			// Each user predicts from the consensus order with their
			// own noise, blind to who sits out.
			for u := range userIDs {
				predicted := g.perturb(pool, userNoise[u])
				ranked := make([]model.RankedPlayer, g.rankedCount)
				for r := 0; r < g.rankedCount; r++ {
					ranked[r] = model.RankedPlayer{PlayerID: predicted[r], Rank: r + 1}
				}
				season.Rankings = append(season.Rankings, model.UserRanking{
					UserID:   userIDs[u],
					Week:     week,
					Position: pos,
					Version:  "1",
					Rankings: ranked,
				})
			}
		}
	}

	return season
}

// perturb returns the pool reordered by consensus index plus gaussian
// noise. The input slice is not modified.
func (g *Generator) perturb(pool []string, noise float64) []string {
	type scored struct {
		id  string
		key float64
	}
	keys := make([]scored, len(pool))
	for i, id := range pool {
		keys[i] = scored{id: id, key: float64(i) + g.rng.NormFloat64()*noise}
	}
	sort.SliceStable(keys, func(a, b int) bool { return keys[a].key < keys[b].key })

	out := make([]string, len(pool))
	for i, k := range keys {
		out[i] = k.id
	}
	return out
}

// weekRecords converts a weekly actual order into performance records,
// dropping players who sit out that week.
func (g *Generator) weekRecords(pos model.Position, week int, order []string) []model.PerformanceRecord {
	records := make([]model.PerformanceRecord, 0, len(order))
	for i, id := range order {
		if g.rng.Float64() < sitOutChance {
			continue
		}
		points := topPoints - float64(i)*pointsPerSlot + g.rng.Float64()*pointsJitter
		if points < 0 {
			points = 0
		}
		records = append(records, model.PerformanceRecord{
			PlayerID:     id,
			Position:     pos,
			Week:         week,
			ActualPoints: points,
		})
	}
	return records
}
