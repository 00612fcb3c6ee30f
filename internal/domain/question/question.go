package question

// Difficulty is the tier a question belongs to. Students unlock tiers
// progressively as their cumulative score grows.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Question is an immutable reference record from the seed catalog.
type Question struct {
	ID                  string
	Prompt              string
	KnowledgeComponents []string
	ExpectedAnswer      string
	// CriticalError, when present, describes a misconception that forces a
	// zero score regardless of anything else the student wrote.
	CriticalError string
	MaxPoints     float64
	Difficulty    Difficulty
}

// tiersForLevel maps an unlocked level to the difficulty tiers it grants
// access to.
var tiersForLevel = map[int][]Difficulty{
	1: {DifficultyBasic},
	2: {DifficultyBasic, DifficultyIntermediate},
	3: {DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced},
}

// AvailableAt reports whether the question is unlocked at the given level.
func (q Question) AvailableAt(level int) bool {
	for _, tier := range tiersForLevel[level] {
		if q.Difficulty == tier {
			return true
		}
	}
	return false
}
