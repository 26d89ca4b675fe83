package domain

// ScenarioConfig represents a named estimation parameter set. Scenarios
// pair with the fixture datasets and give the drivers reproducible runs.
type ScenarioConfig struct {
	ScenarioID      string  // "uniform-ramp" | "uniform-ramp-windowed" | "staged-rampup"
	BValue          float64 // Gutenberg-Richter b-value
	MagnitudeCutoff float64 // completeness magnitude Mc
	VolumeStart     float64 // low volume bound (0 = rebase at first survivor)
	VolumeEnd       float64 // high volume bound (0 = unbounded)
}

// Scenario ID constants
const (
	ScenarioUniformRamp         = "uniform-ramp"
	ScenarioUniformRampWindowed = "uniform-ramp-windowed"
	ScenarioStagedRampup        = "staged-rampup"
)

// Predefined scenario configurations matching the fixture datasets.
var (
	ScenarioConfigUniformRamp = ScenarioConfig{
		ScenarioID:      ScenarioUniformRamp,
		BValue:          1.0,
		MagnitudeCutoff: 1.0,
		VolumeStart:     0,
		VolumeEnd:       0,
	}

	ScenarioConfigUniformRampWindowed = ScenarioConfig{
		ScenarioID:      ScenarioUniformRampWindowed,
		BValue:          1.0,
		MagnitudeCutoff: 1.0,
		VolumeStart:     100,
		VolumeEnd:       500,
	}

	ScenarioConfigStagedRampup = ScenarioConfig{
		ScenarioID:      ScenarioStagedRampup,
		BValue:          1.2,
		MagnitudeCutoff: 0.8,
		VolumeStart:     0,
		VolumeEnd:       0,
	}
)

// ScenarioByID looks up a predefined scenario configuration.
func ScenarioByID(id string) (ScenarioConfig, bool) {
	switch id {
	case ScenarioUniformRamp:
		return ScenarioConfigUniformRamp, true
	case ScenarioUniformRampWindowed:
		return ScenarioConfigUniformRampWindowed, true
	case ScenarioStagedRampup:
		return ScenarioConfigStagedRampup, true
	}
	return ScenarioConfig{}, false
}

// Params converts the scenario into estimation parameters.
func (s ScenarioConfig) Params() FitParameters {
	return FitParameters{
		BValue:          s.BValue,
		MagnitudeCutoff: s.MagnitudeCutoff,
		VolumeStart:     s.VolumeStart,
		VolumeEnd:       s.VolumeEnd,
	}
}
