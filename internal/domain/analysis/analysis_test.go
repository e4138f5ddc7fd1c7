package analysis_test

import (
	"testing"

	analysis "github.com/halverson/rankcast/internal/domain/analysis"
	model "github.com/halverson/rankcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func result(user string, week int, pos model.Position, score float64) model.AccuracyResult {
	return model.AccuracyResult{
		UserID:        user,
		Week:          week,
		Position:      pos,
		Score:         score,
		PlayersScored: 10,
	}
}

func TestAnalyze(t *testing.T) {
	Convey("Given an analyzer with default thresholds", t, func() {
		analyzer := analysis.New()

		Convey("When the batch is empty", func() {
			report := analyzer.Analyze(nil)

			Convey("Then the report is zeroed with all checks failing", func() {
				So(report.Overall.Count, ShouldEqual, 0)
				So(report.Checks.PositionFairness, ShouldBeFalse)
				So(report.Checks.ScoreDiscrimination, ShouldBeFalse)
				So(report.Checks.WeeklyStability, ShouldBeFalse)
				So(report.Distribution, ShouldHaveLength, 7)
			})
		})

		Convey("When analyzing a small mixed batch", func() {
			results := []model.AccuracyResult{
				result("u1", 1, model.PositionQB, 95),
				result("u2", 1, model.PositionQB, 85),
				result("u3", 2, model.PositionRB, 75),
				result("u4", 2, model.PositionWR, 65),
				result("u5", 3, model.PositionTE, 55),
				result("u6", 3, model.PositionTE, 45),
				result("u7", 3, model.PositionTE, 35),
			}
			report := analyzer.Analyze(results)

			Convey("Then overall stats are correct", func() {
				So(report.Overall.Count, ShouldEqual, 7)
				So(report.Overall.Mean, ShouldAlmostEqual, 65, 0.0001)
				So(report.Overall.Median, ShouldEqual, 65)
				So(report.Overall.Min, ShouldEqual, 35)
				So(report.Overall.Max, ShouldEqual, 95)
				So(report.Overall.StdDev, ShouldBeGreaterThan, 0)
			})

			Convey("Then each result lands in exactly one bucket", func() {
				total := 0
				for _, b := range report.Distribution {
					total += b.Count
				}
				So(total, ShouldEqual, len(results))
			})

			Convey("Then bucket labels line up with counts", func() {
				byLabel := make(map[string]int)
				for _, b := range report.Distribution {
					byLabel[b.Label] = b.Count
				}
				So(byLabel["90-100"], ShouldEqual, 1)
				So(byLabel["80-89"], ShouldEqual, 1)
				So(byLabel["<40"], ShouldEqual, 1)
			})

			Convey("Then percentages sum to 100", func() {
				sum := 0.0
				for _, b := range report.Distribution {
					sum += b.Percent
				}
				So(sum, ShouldAlmostEqual, 100, 0.0001)
			})

			Convey("Then per-position and per-week groups are complete", func() {
				So(report.ByPosition, ShouldHaveLength, 4)
				So(report.ByPosition[model.PositionTE].Count, ShouldEqual, 3)
				So(report.ByPosition[model.PositionTE].Median, ShouldEqual, 45)
				So(report.ByWeek, ShouldHaveLength, 3)
				So(report.ByWeek[3].Count, ShouldEqual, 3)
				So(report.ByWeek[1].Mean, ShouldEqual, 90)
			})

			Convey("Then perfect-match and player totals accumulate per position", func() {
				So(report.ByPosition[model.PositionQB].PlayersScored, ShouldEqual, 20)
			})
		})

		Convey("When every score in the batch is identical", func() {
			results := make([]model.AccuracyResult, 20)
			for i := range results {
				results[i] = result("u", 1+i%4, model.Positions()[i%4], 70)
			}
			report := analyzer.Analyze(results)

			Convey("Then the discrimination ratio collapses to 1/N and fails", func() {
				So(report.Checks.DiscriminationRatio, ShouldAlmostEqual, 1.0/20, 0.0001)
				So(report.Checks.ScoreDiscrimination, ShouldBeFalse)
			})

			Convey("Then fairness and stability trivially pass", func() {
				So(report.Checks.PositionStdDev, ShouldEqual, 0)
				So(report.Checks.PositionFairness, ShouldBeTrue)
				So(report.Checks.WeeklyStdDev, ShouldEqual, 0)
				So(report.Checks.WeeklyStability, ShouldBeTrue)
			})
		})

		Convey("When one position is systematically favored", func() {
			var results []model.AccuracyResult
			for i := 0; i < 10; i++ {
				results = append(results,
					result("u", 1, model.PositionQB, 90+float64(i)*0.1),
					result("u", 1, model.PositionRB, 60+float64(i)*0.1),
					result("u", 1, model.PositionWR, 61+float64(i)*0.1),
					result("u", 1, model.PositionTE, 62+float64(i)*0.1),
				)
			}
			report := analyzer.Analyze(results)

			Convey("Then the fairness check fails", func() {
				So(report.Checks.PositionStdDev, ShouldBeGreaterThan, 5)
				So(report.Checks.PositionFairness, ShouldBeFalse)
			})
		})

		Convey("When weekly means drift apart", func() {
			var results []model.AccuracyResult
			for week := 1; week <= 4; week++ {
				for i := 0; i < 5; i++ {
					results = append(results, result("u", week, model.PositionQB, float64(50+10*week)))
				}
			}
			report := analyzer.Analyze(results)

			Convey("Then the stability check fails", func() {
				So(report.Checks.WeeklyStdDev, ShouldBeGreaterThan, 3)
				So(report.Checks.WeeklyStability, ShouldBeFalse)
			})
		})
	})

	Convey("Given an analyzer with relaxed thresholds", t, func() {
		analyzer := analysis.New(
			analysis.WithFairnessThreshold(50),
			analysis.WithStabilityThreshold(50),
			analysis.WithDiscriminationThreshold(0.01),
		)

		Convey("When analyzing a lopsided batch", func() {
			results := []model.AccuracyResult{
				result("u1", 1, model.PositionQB, 95),
				result("u2", 2, model.PositionRB, 40),
				result("u3", 3, model.PositionWR, 42),
				result("u4", 4, model.PositionTE, 44),
			}
			report := analyzer.Analyze(results)

			Convey("Then all checks pass under the relaxed limits", func() {
				So(report.Checks.PositionFairness, ShouldBeTrue)
				So(report.Checks.ScoreDiscrimination, ShouldBeTrue)
				So(report.Checks.WeeklyStability, ShouldBeTrue)
			})
		})
	})
}
