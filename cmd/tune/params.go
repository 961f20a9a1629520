// Command tune searches scripted-bot gains with CMA-ES.
package main

import (
	"github.com/pthm-cable/arena/policy"
)

// ParamSpec defines a single tunable gain.
type ParamSpec struct {
	Name string  // matches the gains YAML key
	Min  float64 // lower bound
	Max  float64 // upper bound
}

// ParamVector maps optimizer vectors to policy.Gains. Order matches Specs.
type ParamVector struct {
	Specs    []ParamSpec
	Defaults policy.Gains
}

// NewParamVector creates the standard search space around the default gains.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "turn_gain", Min: 0.2, Max: 6.0},
			{Name: "approach_distance", Min: 0.4, Max: 4.0},
			{Name: "approach_gain", Min: 0.0, Max: 3.0},
			{Name: "strafe_gain", Min: 0.0, Max: 1.0},
			{Name: "search_spin", Min: 0.0, Max: 1.0},
			{Name: "cruise_speed", Min: 0.0, Max: 1.0},
			{Name: "wall_avoid_distance", Min: 0.3, Max: 2.0},
		},
		Defaults: policy.DefaultGains(),
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default gains as a raw vector.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.FromGains(pv.Defaults)
}

// Normalize converts raw values to the [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ToGains clamps a raw vector and writes it over the defaults.
func (pv *ParamVector) ToGains(values []float64) policy.Gains {
	c := pv.Clamp(values)
	g := pv.Defaults
	g.TurnGain = c[0]
	g.ApproachDistance = c[1]
	g.ApproachGain = c[2]
	g.StrafeGain = c[3]
	g.SearchSpin = c[4]
	g.CruiseSpeed = c[5]
	g.WallAvoidDistance = c[6]
	return g
}

// FromGains extracts a raw vector from gains.
func (pv *ParamVector) FromGains(g policy.Gains) []float64 {
	return []float64{
		g.TurnGain,
		g.ApproachDistance,
		g.ApproachGain,
		g.StrafeGain,
		g.SearchSpin,
		g.CruiseSpeed,
		g.WallAvoidDistance,
	}
}
