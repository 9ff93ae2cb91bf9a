package model

// FormationHint suggests how a batch is laid out at the world edge.
type FormationHint int32

const (
	// FormationLine spreads spawns evenly along the spawn edge.
	FormationLine FormationHint = iota
	// FormationCluster packs spawns around one jittered edge point.
	FormationCluster
	// FormationArc places spawns along an arc bowed toward the objective.
	FormationArc
)

// String returns human-readable formation name.
func (f FormationHint) String() string {
	switch f {
	case FormationLine:
		return "line"
	case FormationCluster:
		return "cluster"
	case FormationArc:
		return "arc"
	default:
		return "unknown"
	}
}

// ParseFormationHint maps a config string to a FormationHint.
// Returns false for unknown names.
func ParseFormationHint(s string) (FormationHint, bool) {
	switch s {
	case "", "line":
		return FormationLine, true
	case "cluster":
		return FormationCluster, true
	case "arc":
		return FormationArc, true
	default:
		return 0, false
	}
}

// Batch is one spawn group inside a wave: count hostiles of one faction
// released at a fixed interval.
type Batch struct {
	Faction       string
	Count         int
	SpawnInterval float64 // seconds between spawns
	Formation     FormationHint
}

// WaveDefinition is an ordered sequence of batches.
type WaveDefinition struct {
	Batches []Batch
}

// TotalCount returns the number of hostiles the wave will spawn.
func (w *WaveDefinition) TotalCount() int {
	total := 0
	for _, b := range w.Batches {
		total += b.Count
	}
	return total
}
