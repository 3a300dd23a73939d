package params

// ptrF and ptrMode mirror the teacher's ptrFloat64/ptrString helpers for
// building pointer-field partial overrides concisely.
func ptrF(v float64) *float64 { return &v }
func ptrMode(m Mode) *Mode    { return &m }

// Presets maps a display name to a partial Overrides value, per spec.md §3
// ("A set of named presets maps display names to partial parameter
// overrides").
var Presets = map[string]Overrides{
	"Standard": {
		Mode: ptrMode(ModeStandard),
	},
	"Quasicrystal": {
		Mode:           ptrMode(ModeQuasicrystal),
		CouplingWeight: ptrF(0.85),
		WC:             ptrF(1.6),
		WK:             ptrF(0.6),
	},
	"Criticality": {
		Mode:              ptrMode(ModeCriticality),
		AttractorStrength: ptrF(6.0),
		WA:                ptrF(1.8),
		WR:                ptrF(0.3),
	},
	"Fractal": {
		Mode:          ptrMode(ModeFractal),
		CurvatureGain: ptrF(4.0),
		WK:            ptrF(1.9),
	},
	"Soliton": {
		Mode:           ptrMode(ModeSoliton),
		CouplingRadius: ptrF(2.2),
		WC:             ptrF(1.4),
		WT:             ptrF(1.3),
	},
	"Cosmic Web": {
		Mode:               ptrMode(ModeCosmicWeb),
		RedistributionRate: ptrF(0.4),
		WR:                 ptrF(1.2),
		WC:                 ptrF(1.3),
	},
}

// PresetNames returns the display names of the available presets.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
