package shader

// Stage is the pipeline stage a shader targets.
type Stage int

const (
	StageNone Stage = iota
	StageVertex
	StageTessellation
	StageGeometry
	StageFragment
	StageCompute
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTessellation:
		return "tesselation"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "none"
	}
}

// attribute is the WGSL entry point attribute for the stage, or "" when
// WGSL cannot express it.
func (s Stage) attribute() string {
	switch s {
	case StageVertex:
		return "@vertex"
	case StageFragment:
		return "@fragment"
	case StageCompute:
		return "@compute"
	default:
		return ""
	}
}
