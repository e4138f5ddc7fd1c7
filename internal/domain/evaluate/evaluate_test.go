package evaluate_test

import (
	"context"
	"testing"

	evaluate "github.com/halverson/rankcast/internal/domain/evaluate"
	model "github.com/halverson/rankcast/internal/domain/model"
	scoring "github.com/halverson/rankcast/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func qbRecord(id string, week int, points float64) model.PerformanceRecord {
	return model.PerformanceRecord{
		PlayerID:     id,
		PlayerName:   "QB " + id,
		Team:         "FA",
		Position:     model.PositionQB,
		Week:         week,
		Season:       2025,
		ActualPoints: points,
	}
}

func TestActualRanks(t *testing.T) {
	Convey("Given a performance table", t, func() {
		ranking := model.UserRanking{UserID: "u1", Week: 5, Position: model.PositionQB}
		records := []model.PerformanceRecord{
			qbRecord("p1", 5, 28.4),
			qbRecord("p2", 5, 12.0),
			qbRecord("p3", 5, 19.7),
			qbRecord("other-week", 4, 40.0),
			{PlayerID: "rb", Position: model.PositionRB, Week: 5, ActualPoints: 33.0},
		}

		Convey("When deriving actual ranks", func() {
			ranks := evaluate.ActualRanks(ranking, records)

			Convey("Then ranks are dense, 1-based, by points descending", func() {
				So(ranks, ShouldHaveLength, 3)
				So(ranks["p1"], ShouldEqual, 1)
				So(ranks["p3"], ShouldEqual, 2)
				So(ranks["p2"], ShouldEqual, 3)
			})

			Convey("Then other weeks and positions are excluded", func() {
				So(ranks, ShouldNotContainKey, "other-week")
				So(ranks, ShouldNotContainKey, "rb")
			})
		})

		Convey("When two players tie on realized points", func() {
			tied := []model.PerformanceRecord{
				qbRecord("a", 5, 20.0),
				qbRecord("b", 5, 20.0),
				qbRecord("c", 5, 10.0),
			}
			ranks := evaluate.ActualRanks(ranking, tied)

			Convey("Then the stable sort keeps input order", func() {
				So(ranks["a"], ShouldEqual, 1)
				So(ranks["b"], ShouldEqual, 2)
				So(ranks["c"], ShouldEqual, 3)
			})
		})
	})
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	Convey("Given an evaluator with default scoring", t, func() {
		ev := evaluate.NewRankingEvaluator()

		Convey("When the ranking is empty", func() {
			result, err := ev.Evaluate(ctx, model.UserRanking{
				UserID: "u1", Week: 1, Position: model.PositionQB,
			}, []model.PerformanceRecord{qbRecord("p1", 1, 10)})

			Convey("Then it yields the canonical zero result", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 0)
				So(result.PlayersScored, ShouldEqual, 0)
				So(result.PerfectMatches, ShouldEqual, 0)
				So(result.ClosePredictions, ShouldEqual, 0)
				So(result.BonusPoints, ShouldEqual, 0)
				So(result.PenaltyPoints, ShouldEqual, 0)
			})
		})

		Convey("When a predicted player has no performance record", func() {
			ranking := model.UserRanking{
				UserID: "u1", Week: 2, Position: model.PositionQB,
				Rankings: []model.RankedPlayer{{PlayerID: "ghost", Rank: 1}},
			}
			result, err := ev.Evaluate(ctx, ranking, nil)

			Convey("Then the missing-player policy applies", func() {
				So(err, ShouldBeNil)
				So(result.PlayersScored, ShouldEqual, 1)
				So(result.PenaltyPoints, ShouldEqual, 10)
				// base 40, penalty 10/1 => 30
				So(result.Score, ShouldEqual, 30)
				So(result.PerfectMatches, ShouldEqual, 0)
				So(result.ClosePredictions, ShouldEqual, 0)
			})
		})

		Convey("When evaluating the 3-player week-5 scenario", func() {
			// Predicted p1->1, p2->2, p3->3; realized order p1, p3, p2.
			ranking := model.UserRanking{
				UserID: "u1", Week: 5, Position: model.PositionQB, Version: "v1",
				Rankings: []model.RankedPlayer{
					{PlayerID: "p1", Rank: 1},
					{PlayerID: "p2", Rank: 2},
					{PlayerID: "p3", Rank: 3},
				},
			}
			records := []model.PerformanceRecord{
				qbRecord("p1", 5, 30.0),
				qbRecord("p2", 5, 15.0),
				qbRecord("p3", 5, 22.0),
			}
			result, err := ev.Evaluate(ctx, ranking, records)

			Convey("Then heavy stacked bonuses clamp the score at 100", func() {
				So(err, ShouldBeNil)
				// bases 100+85+85, bonuses 25 each
				So(result.Score, ShouldEqual, 100)
				So(result.PerfectMatches, ShouldEqual, 1)
				So(result.ClosePredictions, ShouldEqual, 3)
				So(result.PlayersScored, ShouldEqual, 3)
				So(result.BonusPoints, ShouldEqual, 75)
				So(result.PenaltyPoints, ShouldEqual, 0)
			})

			Convey("Then the result carries the ranking's identity", func() {
				So(err, ShouldBeNil)
				So(result.UserID, ShouldEqual, "u1")
				So(result.Week, ShouldEqual, 5)
				So(result.Position, ShouldEqual, model.PositionQB)
				So(result.Version, ShouldEqual, "v1")
			})
		})

		Convey("When a top pick busts badly", func() {
			// 21 players so the predicted-1 player can land at rank 21.
			records := make([]model.PerformanceRecord, 0, 21)
			for i := 1; i <= 20; i++ {
				records = append(records, qbRecord(playerID(i), 3, float64(40-i)))
			}
			records = append(records, qbRecord("bust", 3, 1.0))

			ranking := model.UserRanking{
				UserID: "u1", Week: 3, Position: model.PositionQB,
				Rankings: []model.RankedPlayer{{PlayerID: "bust", Rank: 1}},
			}
			result, err := ev.Evaluate(ctx, ranking, records)

			Convey("Then both bust penalties stack on top of the base", func() {
				So(err, ShouldBeNil)
				// d=20 => base 5; penalties 15+20=35 => clamp(5-35) = 0
				So(result.Score, ShouldEqual, 0)
				So(result.PenaltyPoints, ShouldEqual, 35)
			})
		})

		Convey("When the same input is evaluated twice with shuffled entries", func() {
			records := []model.PerformanceRecord{
				qbRecord("a", 7, 25), qbRecord("b", 7, 20), qbRecord("c", 7, 15), qbRecord("d", 7, 10),
			}
			forward := model.UserRanking{
				UserID: "u1", Week: 7, Position: model.PositionQB,
				Rankings: []model.RankedPlayer{
					{PlayerID: "a", Rank: 1}, {PlayerID: "b", Rank: 2},
					{PlayerID: "c", Rank: 3}, {PlayerID: "d", Rank: 4},
				},
			}
			reversed := forward
			reversed.Rankings = []model.RankedPlayer{
				{PlayerID: "d", Rank: 4}, {PlayerID: "c", Rank: 3},
				{PlayerID: "b", Rank: 2}, {PlayerID: "a", Rank: 1},
			}

			r1, err1 := ev.Evaluate(ctx, forward, records)
			r2, err2 := ev.Evaluate(ctx, reversed, records)

			Convey("Then iteration order does not affect the result", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(r1.Score, ShouldEqual, r2.Score)
				So(r1.PerfectMatches, ShouldEqual, r2.PerfectMatches)
				So(r1.BonusPoints, ShouldEqual, r2.BonusPoints)
			})
		})

		Convey("When scored across many random-ish inputs", func() {
			records := make([]model.PerformanceRecord, 0, 30)
			for i := 1; i <= 30; i++ {
				records = append(records, qbRecord(playerID(i), 9, float64(60-2*i)))
			}
			ranking := model.UserRanking{
				UserID: "u1", Week: 9, Position: model.PositionQB,
			}
			// Worst-case inversion of 30 players.
			for i := 1; i <= 30; i++ {
				ranking.Rankings = append(ranking.Rankings, model.RankedPlayer{
					PlayerID: playerID(31 - i), Rank: i,
				})
			}
			result, err := ev.Evaluate(ctx, ranking, records)

			Convey("Then the aggregate stays within [0,100]", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldBeBetweenOrEqual, 0, 100)
				So(result.PlayersScored, ShouldEqual, 30)
			})
		})
	})

	Convey("Given an evaluator with a custom missing-player policy", t, func() {
		ev := evaluate.NewRankingEvaluator(
			evaluate.WithScorer(scoring.NewRankScorer(
				scoring.WithMissingPlayerPolicy(scoring.MissingPlayerPolicy{BaseScore: 50, Penalty: 0}),
			)),
		)

		Convey("When a predicted player did not play", func() {
			ranking := model.UserRanking{
				UserID: "u2", Week: 1, Position: model.PositionWR,
				Rankings: []model.RankedPlayer{{PlayerID: "out", Rank: 1}},
			}
			result, err := ev.Evaluate(ctx, ranking, nil)

			Convey("Then the configured policy applies instead of the default", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 50)
				So(result.PenaltyPoints, ShouldEqual, 0)
			})
		})
	})
}

func playerID(i int) string {
	return "p" + string(rune('a'+(i-1)/26)) + string(rune('a'+(i-1)%26))
}
