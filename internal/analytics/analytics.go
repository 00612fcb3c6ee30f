// Package analytics derives study statistics from recorded submissions.
// All computation happens over snapshots passed in by the caller; the
// aggregator holds no state of its own besides the item catalogs it uses
// to attribute answers to knowledge components.
package analytics

import (
	"sort"
	"time"

	"github.com/helix-ai/backend/internal/domain/clinicalcase"
	"github.com/helix-ai/backend/internal/domain/question"
	"github.com/helix-ai/backend/internal/domain/submission"
)

const (
	// needsAttentionAccuracy flags students below this accuracy.
	needsAttentionAccuracy = 50.0
	// needsAttentionMinSubs flags students with fewer graded answers.
	needsAttentionMinSubs = 3

	// minComponentSamples is required before a component can be called
	// the weakest; a single miss is not a pattern.
	minComponentSamples = 2

	trendWindow    = 30 * 24 * time.Hour
	trendThreshold = 10.0
)

// Trend describes how a student's weekly accuracy is moving.
type Trend string

const (
	TrendImproving    Trend = "improving"
	TrendDeclining    Trend = "declining"
	TrendStable       Trend = "stable"
	TrendInsufficient Trend = "insufficient_data"
)

// ComponentStats accumulates accuracy for one knowledge component or one
// difficulty tier.
type ComponentStats struct {
	Attempts            int     `json:"attempts"`
	Correct             int     `json:"correct"`
	AccuracyPercent     float64 `json:"accuracy_percent"`
	MeanDurationSeconds float64 `json:"mean_duration_seconds"`

	durationSum float64
	durationN   int
}

// UserStats is the per-student analytics snapshot.
type UserStats struct {
	UserID              string                    `json:"user_id"`
	TotalSubmissions    int                       `json:"total_submissions"`
	GradedSubmissions   int                       `json:"graded_submissions"`
	CorrectCount        int                       `json:"correct_count"`
	AccuracyPercent     float64                   `json:"accuracy_percent"`
	TotalPoints         float64                   `json:"total_points"`
	MeanDurationSeconds float64                   `json:"mean_duration_seconds"`
	Components          map[string]ComponentStats `json:"components"`
	Difficulties        map[string]ComponentStats `json:"difficulties"`
	WeakestComponent    string                    `json:"weakest_component,omitempty"`
	WeakestDifficulty   string                    `json:"weakest_difficulty,omitempty"`
	Trend               Trend                     `json:"trend"`
}

// CohortEntry is one row of the professor-facing ranking.
type CohortEntry struct {
	Rank            int     `json:"rank"`
	UserID          string  `json:"user_id"`
	TotalPoints     float64 `json:"total_points"`
	AccuracyPercent float64 `json:"accuracy_percent"`
	Submissions     int     `json:"submissions"`
	NeedsAttention  bool    `json:"needs_attention"`
}

// Aggregator computes statistics over submission histories.
type Aggregator struct {
	questions *question.Catalog
	cases     *clinicalcase.Catalog
}

func NewAggregator(questions *question.Catalog, cases *clinicalcase.Catalog) *Aggregator {
	return &Aggregator{questions: questions, cases: cases}
}

// UserStats aggregates one student's history. Records that cannot be
// interpreted (no verdict, unknown item) degrade gracefully: the record
// is skipped or counted only where its data is sound, never aborting the
// whole aggregation.
func (a *Aggregator) UserStats(userID string, subs []submission.Submission, now time.Time) UserStats {
	stats := UserStats{
		UserID:       userID,
		Components:   make(map[string]ComponentStats),
		Difficulties: make(map[string]ComponentStats),
		Trend:        TrendInsufficient,
	}

	var durationSum float64
	var durationCount int

	for _, s := range subs {
		stats.TotalSubmissions++
		if s.Result.Classification == "" || s.Result.Classification == submission.Error {
			continue
		}
		stats.GradedSubmissions++
		stats.TotalPoints += s.Result.PointsGained
		if s.Result.IsCorrect {
			stats.CorrectCount++
		}
		if s.DurationSeconds > 0 {
			durationSum += s.DurationSeconds
			durationCount++
		}

		for _, comp := range a.componentsOf(s) {
			bump(stats.Components, comp, s.Result.IsCorrect, s.DurationSeconds)
		}
		if d := a.difficultyOf(s); d != "" {
			bump(stats.Difficulties, d, s.Result.IsCorrect, s.DurationSeconds)
		}
	}

	if stats.GradedSubmissions > 0 {
		stats.AccuracyPercent = 100 * float64(stats.CorrectCount) / float64(stats.GradedSubmissions)
	}
	if durationCount > 0 {
		stats.MeanDurationSeconds = durationSum / float64(durationCount)
	}
	finalizeAccuracy(stats.Components)
	finalizeAccuracy(stats.Difficulties)
	stats.WeakestComponent = weakest(stats.Components)
	stats.WeakestDifficulty = weakest(stats.Difficulties)
	stats.Trend = a.trend(subs, now)
	return stats
}

// Cohort ranks every student by accuracy and flags the ones who need a
// closer look. Ties break by points, then user ID, so the ordering is
// stable between runs.
func (a *Aggregator) Cohort(byUser map[string][]submission.Submission, now time.Time) []CohortEntry {
	entries := make([]CohortEntry, 0, len(byUser))
	for userID, subs := range byUser {
		st := a.UserStats(userID, subs, now)
		entries = append(entries, CohortEntry{
			UserID:          userID,
			TotalPoints:     st.TotalPoints,
			AccuracyPercent: st.AccuracyPercent,
			Submissions:     st.GradedSubmissions,
			NeedsAttention: st.AccuracyPercent < needsAttentionAccuracy ||
				st.GradedSubmissions < needsAttentionMinSubs,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AccuracyPercent != entries[j].AccuracyPercent {
			return entries[i].AccuracyPercent > entries[j].AccuracyPercent
		}
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// trend buckets the last 30 days of graded answers into weeks and compares
// the earliest bucket with the latest.
func (a *Aggregator) trend(subs []submission.Submission, now time.Time) Trend {
	windowStart := now.Add(-trendWindow)

	type bucket struct{ correct, total int }
	buckets := make(map[int]*bucket)
	for _, s := range subs {
		if s.Result.Classification == "" || s.Result.Classification == submission.Error {
			continue
		}
		if s.Timestamp.Before(windowStart) || s.Timestamp.After(now) {
			continue
		}
		week := int(s.Timestamp.Sub(windowStart).Hours() / (24 * 7))
		b := buckets[week]
		if b == nil {
			b = &bucket{}
			buckets[week] = b
		}
		b.total++
		if s.Result.IsCorrect {
			b.correct++
		}
	}

	weeks := make([]int, 0, len(buckets))
	for w := range buckets {
		weeks = append(weeks, w)
	}
	if len(weeks) < 2 {
		return TrendInsufficient
	}
	sort.Ints(weeks)

	first := buckets[weeks[0]]
	last := buckets[weeks[len(weeks)-1]]
	firstAcc := 100 * float64(first.correct) / float64(first.total)
	lastAcc := 100 * float64(last.correct) / float64(last.total)

	switch delta := lastAcc - firstAcc; {
	case delta > trendThreshold:
		return TrendImproving
	case delta < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func (a *Aggregator) componentsOf(s submission.Submission) []string {
	if s.Mode == submission.ModeClinical {
		if c, ok := a.cases.Get(s.CaseID); ok {
			return c.KnowledgeComponents
		}
		return nil
	}
	if q, ok := a.questions.Get(s.CaseID); ok {
		return q.KnowledgeComponents
	}
	return nil
}

func (a *Aggregator) difficultyOf(s submission.Submission) string {
	if s.Mode == submission.ModeClinical {
		return ""
	}
	if q, ok := a.questions.Get(s.CaseID); ok {
		return string(q.Difficulty)
	}
	return ""
}

func bump(m map[string]ComponentStats, key string, correct bool, duration float64) {
	st := m[key]
	st.Attempts++
	if correct {
		st.Correct++
	}
	if duration > 0 {
		st.durationSum += duration
		st.durationN++
	}
	m[key] = st
}

func finalizeAccuracy(m map[string]ComponentStats) {
	for k, st := range m {
		if st.Attempts > 0 {
			st.AccuracyPercent = 100 * float64(st.Correct) / float64(st.Attempts)
		}
		if st.durationN > 0 {
			st.MeanDurationSeconds = st.durationSum / float64(st.durationN)
		}
		m[k] = st
	}
}

// weakest picks the lowest-accuracy component among those with enough
// samples to mean something. Ties break alphabetically so the result is
// deterministic.
func weakest(m map[string]ComponentStats) string {
	var name string
	var acc float64
	for comp, st := range m {
		if st.Attempts < minComponentSamples {
			continue
		}
		if name == "" || st.AccuracyPercent < acc ||
			(st.AccuracyPercent == acc && comp < name) {
			name = comp
			acc = st.AccuracyPercent
		}
	}
	return name
}
