// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics implements C2: the polymorphic metric model and its
// per-family validators. The metric family is a closed set dispatched
// by a type switch, never by inheritance — each family's invariants
// live next to its own data, per the no-deep-inheritance design note.
package metrics

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
)

// NaturalKey identifies one row within its family: (user_id, instant).
// Full sub-second precision is preserved — collapsing to a calendar
// date is forbidden throughout this package.
type NaturalKey struct {
	UserID uuid.UUID
	At     time.Time
}

// Metric is implemented by every metric family. Validate never
// panics: it always returns a reported error, matching the "errors
// are reported, not raised" rule.
type Metric interface {
	Family() string
	GetUserID() uuid.UUID
	SetUserID(uuid.UUID)
	NaturalKey() NaturalKey
	Validate(cfg *config.ValidationConfig) error
}

// Personalizable is implemented by families whose bounds adjust for
// an individual's characteristics (wheelchair use, age).
type Personalizable interface {
	Metric
	ValidateWithCharacteristics(cfg *config.ValidationConfig, chars *Characteristics) error
}

// CriticalChecker is implemented by families that carry a
// domain-defined "critical condition" predicate operational tooling
// may act on (e.g. SpO2 < 90).
type CriticalChecker interface {
	IsCriticalCondition(cfg *config.ValidationConfig) bool
}

// Sex is carried in Characteristics; no validator reads it, so no
// bound varies by sex.
type Sex string

const (
	SexUnspecified Sex = ""
	SexMale        Sex = "male"
	SexFemale      Sex = "female"
)

// Characteristics carries the personalization hooks referenced by
// spec.md §4.2: wheelchair users bypass step-count bounds in favor of
// push-count/wheelchair-distance bounds; age adjusts the heart-rate
// upper bound and, from 65 on, the systolic range. Sex does not adjust
// any range.
type Characteristics struct {
	AgeYears       int
	Sex            Sex
	UsesWheelchair bool
}
