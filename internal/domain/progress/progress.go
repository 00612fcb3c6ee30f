package progress

import "time"

// Level thresholds: the minimum cumulative score required for each level.
// Levels gate access to harder question tiers and never regress.
var levelThresholds = map[int]float64{
	1: 0,
	2: 120,
	3: 300,
}

const MaxLevel = 3

// UserProgress is the per-user gamification snapshot. It is overwritten
// after every submission (last write wins, keyed by user ID); history lives
// in the submission log, not here.
type UserProgress struct {
	UserID        string    `json:"user_id"`
	Score         float64   `json:"score"`
	Streak        int       `json:"streak"`
	UnlockedLevel int       `json:"unlocked_level"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New returns a fresh progress snapshot at level 1.
func New(userID string) *UserProgress {
	return &UserProgress{UserID: userID, UnlockedLevel: 1}
}

// Outcome is the slice of a graded submission the tracker cares about.
type Outcome struct {
	PointsGained float64
	// StreakCounts is true only for fully correct answers; partial credit
	// earns points but does not extend the streak.
	StreakCounts bool
}

// Apply advances the snapshot by one submission. Score only ever grows, and
// the unlocked level never decreases even if the threshold table changed
// underneath an existing snapshot.
func (p *UserProgress) Apply(o Outcome) {
	if o.PointsGained > 0 {
		p.Score += o.PointsGained
	}
	if o.StreakCounts {
		p.Streak++
	} else {
		p.Streak = 0
	}
	if lvl := LevelFromScore(p.Score); lvl > p.UnlockedLevel {
		p.UnlockedLevel = lvl
	}
	p.UpdatedAt = time.Now()
}

// LevelFromScore maps a cumulative score to the highest threshold reached.
// It is a pure function of the final sum; accumulation order is irrelevant.
func LevelFromScore(score float64) int {
	level := 1
	for l := 1; l <= MaxLevel; l++ {
		if score >= levelThresholds[l] {
			level = l
		}
	}
	return level
}

// ToNextLevel returns the fraction of the way from the current level's
// threshold to the next, in [0, 1]. At the max level it is always 1.
func ToNextLevel(score float64) float64 {
	level := LevelFromScore(score)
	if level == MaxLevel {
		return 1
	}
	cur, next := levelThresholds[level], levelThresholds[level+1]
	if next <= cur {
		return 1
	}
	return (score - cur) / (next - cur)
}
