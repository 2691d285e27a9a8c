package domain

// Level is the 1-5 criticality scale. Only LevelLow through LevelVeryStrong are valid.
type Level int

const (
	LevelLow        Level = 1
	LevelLimited    Level = 2
	LevelMarked     Level = 3
	LevelStrong     Level = 4
	LevelVeryStrong Level = 5
)

// Classifier thresholds.
//
// Earlier rule sets mapped sizes ≤2→3, 3→4, 4-5→5, and folded the remote
// trigger into the score instead of applying it as a floor.
const (
	// Largest avalanche size that still maps to LevelMarked.
	markedMaxSize = 3
	// Size that maps to LevelStrong; anything above is LevelVeryStrong.
	strongSize = 4

	minAvalancheSize = 1
	maxAvalancheSize = 5

	indiceWeight     = 2
	observableWeight = 1

	// Inclusive upper bounds of each score bucket.
	limitedMaxScore = 2
	markedMaxScore  = 4
	strongMaxScore  = 6

	// A remote-triggered avalanche never scores below this level.
	remoteTriggerFloor = LevelStrong
)

// Levels returns the five levels in ascending severity.
func Levels() []Level {
	return []Level{LevelLow, LevelLimited, LevelMarked, LevelStrong, LevelVeryStrong}
}

// Valid reports whether l is one of the five levels.
func (l Level) Valid() bool {
	return l >= LevelLow && l <= LevelVeryStrong
}

// ClampLevel bounds v to the [LevelLow, LevelVeryStrong] range.
func ClampLevel(v int) Level {
	switch {
	case v < int(LevelLow):
		return LevelLow
	case v > int(LevelVeryStrong):
		return LevelVeryStrong
	default:
		return Level(v)
	}
}

// Signals is the classifier input: the field signs of one observation.
// Indices and Observables are sets; duplicates and unknown keys do not count.
// AvalancheSizes and RemoteTrigger are only read when IndiceAvalanche is present.
type Signals struct {
	Indices        []Indice     `json:"indices"`
	Observables    []Observable `json:"observables"`
	AvalancheSizes []int        `json:"avalanche_sizes,omitempty"`
	RemoteTrigger  bool         `json:"remote_trigger,omitempty"`
}

// ComputeCriticality classifies field signals into a criticality level.
// It is total: empty or unknown input yields LevelLow.
func ComputeCriticality(s Signals) Level {
	indices := distinctIndices(s.Indices)
	hasAvalanche := indices[IndiceAvalanche]

	var level Level
	if size, ok := largestAvalancheSize(s.AvalancheSizes); hasAvalanche && ok {
		level = levelForSize(size)
	} else {
		score := indiceWeight*len(indices) + observableWeight*len(distinctObservables(s.Observables))
		level = levelForScore(score)
	}

	if s.RemoteTrigger && hasAvalanche && level < remoteTriggerFloor {
		return remoteTriggerFloor
	}
	return level
}

func levelForSize(size int) Level {
	switch {
	case size <= markedMaxSize:
		return LevelMarked
	case size == strongSize:
		return LevelStrong
	default:
		return LevelVeryStrong
	}
}

func levelForScore(score int) Level {
	switch {
	case score <= 0:
		return LevelLow
	case score <= limitedMaxScore:
		return LevelLimited
	case score <= markedMaxScore:
		return LevelMarked
	case score <= strongMaxScore:
		return LevelStrong
	default:
		return LevelVeryStrong
	}
}

// largestAvalancheSize returns the largest size within the European scale.
// Out-of-range entries are ignored; ok is false when none remain.
// A mixed list such as [0, 9, 4] therefore classifies by 4 rather than falling back to the score.
func largestAvalancheSize(sizes []int) (int, bool) {
	largest, ok := 0, false
	for _, size := range sizes {
		if size < minAvalancheSize || size > maxAvalancheSize {
			continue
		}
		if !ok || size > largest {
			largest, ok = size, true
		}
	}
	return largest, ok
}

func distinctIndices(in []Indice) map[Indice]bool {
	set := make(map[Indice]bool, len(in))
	for _, i := range in {
		if i.Valid() {
			set[i] = true
		}
	}
	return set
}

func distinctObservables(in []Observable) map[Observable]bool {
	set := make(map[Observable]bool, len(in))
	for _, o := range in {
		if o.Valid() {
			set[o] = true
		}
	}
	return set
}
