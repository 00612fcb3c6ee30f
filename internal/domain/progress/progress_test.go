package progress_test

import (
	"math/rand"
	"testing"

	"github.com/helix-ai/backend/internal/domain/progress"
)

func TestLevelFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  int
	}{
		{0, 1},
		{119, 1},
		{120, 2},
		{299, 2},
		{300, 3},
		{1000, 3},
	}

	for _, c := range cases {
		if got := progress.LevelFromScore(c.score); got != c.want {
			t.Errorf("LevelFromScore(%v) = %d, want %d", c.score, got, c.want)
		}
	}
}

func TestLevelFromScore_OrderIndependent(t *testing.T) {
	// Only the final sum matters, not how it was accumulated.
	parts := []float64{10, 50, 7, 90, 143, 25}
	total := 0.0
	for _, p := range parts {
		total += p
	}
	want := progress.LevelFromScore(total)

	for trial := 0; trial < 5; trial++ {
		shuffled := make([]float64, len(parts))
		copy(shuffled, parts)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		sum := 0.0
		for _, p := range shuffled {
			sum += p
		}
		if got := progress.LevelFromScore(sum); got != want {
			t.Fatalf("level depends on accumulation order: got %d, want %d", got, want)
		}
	}
}

func TestApply_StreakExtendsAndResets(t *testing.T) {
	p := progress.New("u1")

	for i := 1; i <= 4; i++ {
		p.Apply(progress.Outcome{PointsGained: 1, StreakCounts: true})
		if p.Streak != i {
			t.Fatalf("after %d correct answers streak = %d, want %d", i, p.Streak, i)
		}
	}

	p.Apply(progress.Outcome{PointsGained: 0.5, StreakCounts: false})
	if p.Streak != 0 {
		t.Errorf("streak after non-correct answer = %d, want 0", p.Streak)
	}
}

func TestApply_LevelIsMonotone(t *testing.T) {
	p := progress.New("u1")

	outcomes := []progress.Outcome{
		{PointsGained: 100, StreakCounts: true},
		{PointsGained: 50, StreakCounts: false}, // crosses level 2
		{PointsGained: 0, StreakCounts: false},
		{PointsGained: 200, StreakCounts: true}, // crosses level 3
		{PointsGained: 0, StreakCounts: false},
	}

	prev := p.UnlockedLevel
	for i, o := range outcomes {
		p.Apply(o)
		if p.UnlockedLevel < prev {
			t.Fatalf("level decreased at step %d: %d -> %d", i, prev, p.UnlockedLevel)
		}
		prev = p.UnlockedLevel
	}

	if p.UnlockedLevel != 3 {
		t.Errorf("final level = %d, want 3", p.UnlockedLevel)
	}
}

func TestApply_ScoreNeverDecreases(t *testing.T) {
	p := progress.New("u1")
	p.Apply(progress.Outcome{PointsGained: 10, StreakCounts: true})
	p.Apply(progress.Outcome{PointsGained: -5, StreakCounts: false})

	if p.Score != 10 {
		t.Errorf("score = %v, want 10 (negative gains must be ignored)", p.Score)
	}
}

func TestToNextLevel(t *testing.T) {
	if got := progress.ToNextLevel(60); got != 0.5 {
		t.Errorf("ToNextLevel(60) = %v, want 0.5", got)
	}
	if got := progress.ToNextLevel(300); got != 1.0 {
		t.Errorf("ToNextLevel(300) = %v, want 1.0 at max level", got)
	}
}
