package simulate

import (
	"log"
	"sort"

	"github.com/halverson/rankcast/internal/domain/analysis"
	"github.com/halverson/rankcast/internal/domain/model"
)

// renderReport prints a population analysis in a readable form.
func renderReport(report analysis.Report) {
	log.Println("📊 Population analysis")
	log.Printf("   Overall: count=%d mean=%.2f median=%.2f min=%.2f max=%.2f stddev=%.2f",
		report.Overall.Count, report.Overall.Mean, report.Overall.Median,
		report.Overall.Min, report.Overall.Max, report.Overall.StdDev)

	log.Println("🏈 By position:")
	for _, pos := range model.Positions() {
		ps, ok := report.ByPosition[pos]
		if !ok {
			continue
		}
		log.Printf("   %-2s: count=%d mean=%.2f median=%.2f perfect=%d scored=%d",
			pos, ps.Count, ps.Mean, ps.Median, ps.PerfectMatches, ps.PlayersScored)
	}

	log.Println("📅 By week:")
	weeks := make([]int, 0, len(report.ByWeek))
	for week := range report.ByWeek {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	for _, week := range weeks {
		ws := report.ByWeek[week]
		log.Printf("   week %2d: count=%d mean=%.2f", week, ws.Count, ws.Mean)
	}

	log.Println("📈 Score distribution:")
	for _, bucket := range report.Distribution {
		log.Printf("   %-6s: %5d (%.1f%%)", bucket.Label, bucket.Count, bucket.Percent)
	}

	log.Println("🔍 Validation checks:")
	logCheck("position fairness", report.Checks.PositionFairness, "stddev=%.2f", report.Checks.PositionStdDev)
	logCheck("score discrimination", report.Checks.ScoreDiscrimination, "ratio=%.3f", report.Checks.DiscriminationRatio)
	logCheck("weekly stability", report.Checks.WeeklyStability, "stddev=%.2f", report.Checks.WeeklyStdDev)
}

// logCheck prints one pass/fail validation line.
func logCheck(name string, passed bool, format string, value float64) {
	status := "✅"
	if !passed {
		status = "⚠️ "
	}
	log.Printf("   %s %s ("+format+")", status, name, value)
}
