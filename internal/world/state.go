package world

// GenerationState is the position of a chunk in the generation pipeline.
// States are totally ordered and only ever advance by one.
type GenerationState int32

const (
	AwaitingTerrain GenerationState = iota
	AwaitingStructures
	AwaitingMesh
	GeneratingMesh
	GeneratingStructures
	Meshed
)

// StateCount is the number of generation states.
const StateCount = int(Meshed) + 1

func (s GenerationState) String() string {
	switch s {
	case AwaitingTerrain:
		return "AwaitingTerrain"
	case AwaitingStructures:
		return "AwaitingStructures"
	case AwaitingMesh:
		return "AwaitingMesh"
	case GeneratingMesh:
		return "GeneratingMesh"
	case GeneratingStructures:
		return "GeneratingStructures"
	case Meshed:
		return "Meshed"
	default:
		return "Unknown"
	}
}

// InFlight reports whether the state marks outstanding asynchronous work.
func (s GenerationState) InFlight() bool {
	return s == GeneratingMesh || s == GeneratingStructures
}
