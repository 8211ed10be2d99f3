// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package adapter implements C3: conversion of one of the two on-wire
// payload shapes into the internal metric model.
package adapter

import "encoding/json"

// Envelope is the top-level request body. Either Metrics/Workouts
// (internal shape) or Data (vendor shape) is populated; IsVendorShape
// reports which.
type Envelope struct {
	// Internal shape.
	Metrics   []InternalMetric `json:"metrics"`
	Workouts  []InternalWorkout `json:"workouts"`

	// Vendor shape, nested under "data" as every Apple Health export
	// tool (and the original Rust service) expects.
	Data *VendorData `json:"data"`
}

// VendorData is the vendor-shape payload body.
type VendorData struct {
	Metrics  []VendorMetric  `json:"metrics"`
	Workouts []VendorWorkout `json:"workouts"`
}

// VendorMetric is one named metric series from the vendor export
// format: {name, units, data:[{date|start|end, qty|value, source}]}.
type VendorMetric struct {
	Name  string            `json:"name"`
	Units string            `json:"units"`
	Data  []VendorDataPoint `json:"data"`
}

// VendorDataPoint is a single sample within a VendorMetric. Timed
// point-in-time samples carry Date; ranged samples (sleep,
// mindfulness) carry Start/End instead.
type VendorDataPoint struct {
	Date   string  `json:"date"`
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Qty    *float64 `json:"qty"`
	Value  *float64 `json:"value"`
	Source string  `json:"source"`
	Extra  json.RawMessage `json:"extra,omitempty"`
}

// Amount returns whichever of Qty/Value was populated; the vendor
// format uses either name depending on metric type.
func (p VendorDataPoint) Amount() (float64, bool) {
	if p.Qty != nil {
		return *p.Qty, true
	}
	if p.Value != nil {
		return *p.Value, true
	}
	return 0, false
}

// VendorWorkout is one workout entry in vendor shape.
type VendorWorkout struct {
	Name             string   `json:"name"`
	Start            string   `json:"start"`
	End              string   `json:"end"`
	ActiveEnergyKcal *float64 `json:"activeEnergyBurned"`
	TotalEnergyKcal  *float64 `json:"totalEnergyBurned"`
	AvgHeartRate     *float64 `json:"avgHeartRate"`
	MaxHeartRate     *float64 `json:"maxHeartRate"`
	DistanceMeters   *float64 `json:"distance"`
	Source           string   `json:"source"`
}

// InternalMetric is a single already-typed metric entry in internal
// shape: {family, recorded_at/sleep_start/started_at, ...fields}.
// It is decoded permissively into a map first (see Convert) because
// the family discriminates which concrete fields are valid.
type InternalMetric struct {
	Family string          `json:"family"`
	Raw    json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw bytes around so Convert can re-decode
// into the concrete struct once Family is known.
func (m *InternalMetric) UnmarshalJSON(b []byte) error {
	var probe struct {
		Family string `json:"family"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	m.Family = probe.Family
	m.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// InternalWorkout is a workout entry already in internal shape.
type InternalWorkout struct {
	WorkoutType      string   `json:"workout_type"`
	StartedAt        string   `json:"started_at"`
	EndedAt          string   `json:"ended_at"`
	ActiveEnergyKcal *float64 `json:"active_energy_kcal"`
	TotalEnergyKcal  *float64 `json:"total_energy_kcal"`
	AvgHeartRate     *int16   `json:"avg_heart_rate"`
	MaxHeartRate     *int16   `json:"max_heart_rate"`
	DistanceMeters   *float64 `json:"distance_meters"`
	SourceDevice     string   `json:"source_device"`
}

// IsVendorShape reports whether e carries the vendor ({data:{...}})
// shape rather than the internal ({metrics:[...]}) shape.
func (e Envelope) IsVendorShape() bool {
	return e.Data != nil
}
