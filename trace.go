package permrun

import (
	"encoding/json"
)

// Trace captures provenance information for one define lookup across the
// precedence layers that were consulted.
type Trace struct {
	Key    string       `json:"key"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a specific layer contributed to a traced key.
type Provenance struct {
	Layer string `json:"layer"`
	Value Value  `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// TracePredefine walks every layer for key, recording which tiers define it
// and with what value. The first Found entry is the effective value.
func (c *Context) TracePredefine(key PredefineKey) Trace {
	trace := Trace{Key: key.String()}
	if key < 0 || key >= predefineCount {
		return trace
	}
	for i := range c.layers {
		tier := &c.layers[i]
		provenance := Provenance{Layer: layerNames[i]}
		if tier.values != nil && tier.premap != nil {
			if slot := tier.premap[key]; slot.Valid {
				provenance.Value = tier.values[slot.Index]
				provenance.Found = true
			}
		}
		trace.Layers = append(trace.Layers, provenance)
	}
	return trace
}

// TraceDefine is TracePredefine for the suite-local namespace.
func (c *Context) TraceDefine(key DefineKey) Trace {
	trace := Trace{Key: c.suite.DefineName(key)}
	if c.suite == nil || int(key) < 0 || int(key) >= len(c.suite.DefineNames) {
		return trace
	}
	for i := range c.layers {
		tier := &c.layers[i]
		provenance := Provenance{Layer: layerNames[i]}
		if tier.values != nil && tier.defmap != nil && int(key) < len(tier.defmap) {
			if slot := tier.defmap[key]; slot.Valid {
				provenance.Value = tier.values[slot.Index]
				provenance.Found = true
			}
		}
		trace.Layers = append(trace.Layers, provenance)
	}
	return trace
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
