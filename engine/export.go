package engine

import "github.com/fieldsim/engine/internal/params"

// engineVersion is the exported schema/version tag for ConfigExport.
const engineVersion = "1.0.0"

// ConfigExport is the spec.md §6 configuration export JSON object.
type ConfigExport struct {
	Parameters params.Parameters `json:"parameters"`
	Regime     Regime            `json:"regime"`
	Colormap   string            `json:"colormap"`
	Mode       params.Mode       `json:"mode"`
	Version    string            `json:"version"`
	Timestamp  int64             `json:"timestamp"`
}

// ExportConfig produces the current configuration snapshot. timestamp is
// supplied by the caller (spec.md's core is side-effect-free; wall-clock
// reads belong to the host).
func (e *Engine) ExportConfig(colormap string, timestamp int64) ConfigExport {
	e.mu.Lock()
	p := e.params
	e.mu.Unlock()

	sig := e.Signature()
	tm := e.TrendMetrics()

	return ConfigExport{
		Parameters: p,
		Regime:     classifyRegime(sig, tm),
		Colormap:   colormap,
		Mode:       p.Mode,
		Version:    engineVersion,
		Timestamp:  timestamp,
	}
}
