// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
	"github.com/Ladvien/self-sensored-sub003/internal/metrics"
)

// Error is a single unknown-or-malformed vendor metric entry:
// spec.md §4.3's "AdapterError" — logged and counted, never fatal to
// the rest of the batch.
type Error struct {
	MetricName string
	Reason     string
}

func (e Error) Error() string {
	return fmt.Sprintf("adapter: %s: %s", e.MetricName, e.Reason)
}

// Result is the outcome of adapting one request body.
type Result struct {
	Rows   []metrics.Metric
	Errors []Error
}

// rowKey groups same-instant vendor samples of the same family into
// one output row (the BP pairing case, and any family with several
// optional fields spread across several vendor metric names).
type rowKey struct {
	family string
	millis int64
}

// Convert adapts envelope into internal rows stamped with userID and
// fresh row IDs. It never returns a fatal error for an individual bad
// metric — those accumulate in Result.Errors — but a malformed
// envelope (unparseable timestamp with no recoverable samples) is
// still reported per field.
func Convert(env Envelope, userID uuid.UUID) (Result, error) {
	if env.IsVendorShape() {
		return convertVendor(*env.Data, userID)
	}
	return convertInternal(env, userID)
}

func convertVendor(data VendorData, userID uuid.UUID) (Result, error) {
	type accumulator struct {
		at     time.Time
		source string
		values map[field]float64
	}
	buckets := make(map[rowKey]*accumulator)
	order := make([]rowKey, 0)
	var rangedRows []metrics.Metric

	var errs []Error

	for _, vm := range data.Metrics {
		m, ok := resolve(vm.Name)
		if !ok {
			errs = append(errs, Error{MetricName: vm.Name, Reason: "unknown vendor metric name"})
			continue
		}

		if m.field == fieldSleepAnalysis || m.field == fieldMindfulSession {
			for _, point := range vm.Data {
				row, err := buildRangedRow(m.field, point)
				if err != nil {
					errs = append(errs, Error{MetricName: vm.Name, Reason: err.Error()})
					continue
				}
				row.SetUserID(userID)
				rangedRows = append(rangedRows, row)
			}
			continue
		}

		for _, point := range vm.Data {
			ts := point.Date
			if ts == "" {
				ts = point.Start
			}
			at, err := parseTimestamp(ts)
			if err != nil {
				errs = append(errs, Error{MetricName: vm.Name, Reason: err.Error()})
				continue
			}

			key := rowKey{family: m.family, millis: at.UnixMilli()}
			b, ok := buckets[key]
			if !ok {
				b = &accumulator{at: at, source: point.Source, values: make(map[field]float64)}
				buckets[key] = b
				order = append(order, key)
			}

			if amount, ok := point.Amount(); ok {
				b.values[m.field] = amount
			}
		}
	}

	rows := make([]metrics.Metric, 0, len(order)+len(rangedRows))
	for _, key := range order {
		b := buckets[key]
		row, err := buildRow(key.family, b.at, b.source, b.values)
		if err != nil {
			errs = append(errs, Error{MetricName: key.family, Reason: err.Error()})
			continue
		}
		if row == nil {
			continue
		}
		assignID(row)
		row.SetUserID(userID)
		rows = append(rows, row)
	}
	for _, row := range rangedRows {
		assignID(row)
	}
	rows = append(rows, rangedRows...)

	for _, w := range data.Workouts {
		row, err := buildWorkout(w)
		if err != nil {
			errs = append(errs, Error{MetricName: "workout:" + w.Name, Reason: err.Error()})
			continue
		}
		row.UserID = userID
		rows = append(rows, row)
	}

	return Result{Rows: rows, Errors: errs}, nil
}

// buildRow materializes one struct from the accumulated field values
// for a (family, instant) bucket. A bucket with no usable value yields
// a nil row; a blood-pressure bucket missing one half, or a family this
// switch does not handle, yields an error.
func buildRow(family string, at time.Time, source string, values map[field]float64) (metrics.Metric, error) {
	f := func(k field) *float64 {
		if v, ok := values[k]; ok {
			return &v
		}
		return nil
	}
	i16 := func(k field) *int16 {
		if v, ok := values[k]; ok {
			n := int16(v)
			return &n
		}
		return nil
	}
	i32 := func(k field) *int32 {
		if v, ok := values[k]; ok {
			n := int32(v)
			return &n
		}
		return nil
	}

	switch family {
	case config.FamilyHeartRate:
		return &metrics.HeartRate{
			RecordedAt:                      at,
			HeartRate:                       i16(fieldHeartRate),
			RestingHeartRate:                i16(fieldRestingHeartRate),
			WalkingHeartRateAverage:         i16(fieldWalkingHeartRateAverage),
			HeartRateVariability:            f(fieldHeartRateVariability),
			HeartRateRecoveryOneMinute:      i16(fieldHeartRateRecoveryOneMinute),
			VO2MaxMlKgMin:                   f(fieldVO2Max),
			SourceDevice:                    source,
		}, nil

	case config.FamilyBloodPressure:
		sys, sok := values[fieldBPSystolic]
		dia, dok := values[fieldBPDiastolic]
		if !sok || !dok {
			return nil, fmt.Errorf("blood pressure requires both systolic and diastolic at the same instant")
		}
		return &metrics.BloodPressure{
			RecordedAt:   at,
			Systolic:     int16(sys),
			Diastolic:    int16(dia),
			SourceDevice: source,
		}, nil

	case config.FamilyActivity:
		return &metrics.Activity{
			RecordedAt:               at,
			StepCount:                i32(fieldStepCount),
			DistanceMeters:           f(fieldDistanceMeters),
			FlightsClimbed:           i32(fieldFlightsClimbed),
			ActiveEnergyBurnedKcal:   f(fieldActiveEnergyBurnedKcal),
			BasalEnergyBurnedKcal:    f(fieldBasalEnergyBurnedKcal),
			PushCount:                i32(fieldPushCount),
			WheelchairDistanceMeters: f(fieldWheelchairDistanceMeters),
			SourceDevice:             source,
		}, nil

	case config.FamilyTemperature:
		temp, context, ok := firstTemperature(values)
		if !ok {
			return nil, nil
		}
		return &metrics.Temperature{
			RecordedAt:         at,
			TemperatureCelsius: temp,
			Context:            context,
			SourceDevice:       source,
		}, nil

	case config.FamilyBloodGlucose:
		v, ok := values[fieldBloodGlucose]
		if !ok {
			return nil, nil
		}
		return &metrics.BloodGlucose{RecordedAt: at, BloodGlucoseMgDl: v, SourceDevice: source}, nil

	case config.FamilyRespiratory:
		return &metrics.Respiratory{
			RecordedAt:          at,
			RespiratoryRate:     i16(fieldRespiratoryRate),
			OxygenSaturation:    f(fieldOxygenSaturation),
			SourceDevice:        source,
		}, nil

	case config.FamilyBodyMeasurement:
		return &metrics.BodyMeasurement{
			RecordedAt:           at,
			BodyWeightKg:         f(fieldBodyWeightKg),
			BodyMassIndex:        f(fieldBodyMassIndex),
			BodyFatPercentage:    f(fieldBodyFatPercentage),
			WaistCircumferenceCm: f(fieldWaistCircumferenceCm),
			SourceDevice:         source,
		}, nil

	case config.FamilyEnvironmental:
		return &metrics.Environmental{
			RecordedAt:            at,
			UVIndex:               f(fieldUVIndex),
			TimeInDaylightMinutes: i32(fieldTimeInDaylightMinutes),
			NoiseExposureDb:       f(fieldNoiseExposureDb),
			SourceDevice:          source,
		}, nil

	case config.FamilyAudioExposure:
		return &metrics.AudioExposure{
			RecordedAt:              at,
			EnvironmentalAudioDb:    f(fieldEnvironmentalAudioExposure),
			HeadphoneAudioDb:        f(fieldHeadphoneAudioExposure),
			SourceDevice:            source,
		}, nil

	case config.FamilySafetyEvent:
		return &metrics.SafetyEvent{
			RecordedAt:   at,
			EventType:    metrics.SafetyEventFall,
			Severity:     5,
			SourceDevice: source,
		}, nil

	case config.FamilySleep, config.FamilyMindfulness:
		// Ranged (start/end) families are produced directly by
		// buildRangedRow; a lone point-shaped sample for these
		// names carries no useful single instant and is dropped.
		return nil, nil

	default:
		return nil, fmt.Errorf("unhandled family %q in vendor adapter", family)
	}
}

// assignID stamps a fresh row ID on newly produced rows. The Metric
// interface deliberately does not expose an ID setter (only the
// repository layer needs it, and most validation logic never touches
// it), so this type switch is the one place that reaches past the
// interface.
func assignID(m metrics.Metric) {
	switch v := m.(type) {
	case *metrics.HeartRate:
		v.ID = uuid.New()
	case *metrics.BloodPressure:
		v.ID = uuid.New()
	case *metrics.Activity:
		v.ID = uuid.New()
	case *metrics.Temperature:
		v.ID = uuid.New()
	case *metrics.BloodGlucose:
		v.ID = uuid.New()
	case *metrics.Respiratory:
		v.ID = uuid.New()
	case *metrics.BodyMeasurement:
		v.ID = uuid.New()
	case *metrics.Environmental:
		v.ID = uuid.New()
	case *metrics.AudioExposure:
		v.ID = uuid.New()
	case *metrics.SafetyEvent:
		v.ID = uuid.New()
	case *metrics.Sleep:
		v.ID = uuid.New()
	case *metrics.Mindfulness:
		v.ID = uuid.New()
	}
}

// firstTemperature picks whichever single temperature reading is
// present in values, in body > basal > water priority, and reports
// its TemperatureContext. Only one is expected per instant; vendor
// exports that report more than one simultaneously keep the first by
// this priority and drop the rest.
func firstTemperature(values map[field]float64) (float64, metrics.TemperatureContext, bool) {
	if v, ok := values[fieldBodyTemperature]; ok {
		return v, metrics.TemperatureContextBody, true
	}
	if v, ok := values[fieldBasalBodyTemperature]; ok {
		return v, metrics.TemperatureContextBasal, true
	}
	if v, ok := values[fieldWaterTemperature]; ok {
		return v, metrics.TemperatureContextWater, true
	}
	return 0, "", false
}

// buildRangedRow builds the two families whose vendor samples carry
// start/end rather than a single instant.
func buildRangedRow(f field, point VendorDataPoint) (metrics.Metric, error) {
	start, err := parseTimestamp(point.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := parseTimestamp(point.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	switch f {
	case fieldSleepAnalysis:
		return &metrics.Sleep{
			SleepStart:   start,
			SleepEnd:     end,
			SourceDevice: point.Source,
		}, nil
	case fieldMindfulSession:
		return &metrics.Mindfulness{
			RecordedAt:      start,
			DurationMinutes: int32(end.Sub(start).Minutes()),
			Type:            metrics.MindfulnessMeditation,
			SourceDevice:    point.Source,
		}, nil
	default:
		return nil, fmt.Errorf("unhandled ranged field %q", f)
	}
}

func buildWorkout(w VendorWorkout) (*metrics.Workout, error) {
	start, err := parseTimestamp(w.Start)
	if err != nil {
		return nil, fmt.Errorf("workout start: %w", err)
	}
	end, err := parseTimestamp(w.End)
	if err != nil {
		return nil, fmt.Errorf("workout end: %w", err)
	}

	var avgHR, maxHR *int16
	if w.AvgHeartRate != nil {
		v := int16(*w.AvgHeartRate)
		avgHR = &v
	}
	if w.MaxHeartRate != nil {
		v := int16(*w.MaxHeartRate)
		maxHR = &v
	}

	return &metrics.Workout{
		ID:               uuid.New(),
		WorkoutType:       metrics.WorkoutType(w.Name),
		StartedAt:         start,
		EndedAt:           end,
		ActiveEnergyKcal:  w.ActiveEnergyKcal,
		TotalEnergyKcal:   w.TotalEnergyKcal,
		AvgHeartRate:      avgHR,
		MaxHeartRate:      maxHR,
		DistanceMeters:    w.DistanceMeters,
		SourceDevice:       w.Source,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// convertInternal decodes an already-typed payload: each element's
// Family field selects the concrete struct to unmarshal its Raw bytes
// into. This shape trusts the caller's own field names, so it is
// decoded with DisallowUnknownFields, matching the teacher's
// strict-decode idiom in repository/import.go.
func convertInternal(env Envelope, userID uuid.UUID) (Result, error) {
	rows := make([]metrics.Metric, 0, len(env.Metrics))
	var errs []Error

	for _, entry := range env.Metrics {
		row, err := decodeInternalMetric(entry)
		if err != nil {
			errs = append(errs, Error{MetricName: entry.Family, Reason: err.Error()})
			continue
		}
		row.SetUserID(userID)
		rows = append(rows, row)
	}

	for _, w := range env.Workouts {
		start, err := parseTimestamp(w.StartedAt)
		if err != nil {
			errs = append(errs, Error{MetricName: "workout", Reason: err.Error()})
			continue
		}
		end, err := parseTimestamp(w.EndedAt)
		if err != nil {
			errs = append(errs, Error{MetricName: "workout", Reason: err.Error()})
			continue
		}
		rows = append(rows, &metrics.Workout{
			ID:               uuid.New(),
			UserID:           userID,
			WorkoutType:      metrics.WorkoutType(w.WorkoutType),
			StartedAt:        start,
			EndedAt:          end,
			ActiveEnergyKcal: w.ActiveEnergyKcal,
			TotalEnergyKcal:  w.TotalEnergyKcal,
			AvgHeartRate:     w.AvgHeartRate,
			MaxHeartRate:     w.MaxHeartRate,
			DistanceMeters:   w.DistanceMeters,
			SourceDevice:     w.SourceDevice,
			CreatedAt:        time.Now().UTC(),
		})
	}

	return Result{Rows: rows, Errors: errs}, nil
}

func decodeInternalMetric(entry InternalMetric) (metrics.Metric, error) {
	// entry.Raw still carries the discriminator field that selected
	// this branch; strip it before strict-decoding into the concrete
	// struct, which has no field to bind "family" to.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry.Raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding metric body: %w", err)
	}
	delete(fields, "family")
	stripped, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(stripped))
		d.DisallowUnknownFields()
		return d.Decode(v)
	}

	switch entry.Family {
	case config.FamilyHeartRate:
		var m metrics.HeartRate
		if err := dec(&m); err != nil {
			return nil, err
		}
		m.ID = uuid.New()
		return &m, nil
	case config.FamilyBloodPressure:
		var m metrics.BloodPressure
		if err := dec(&m); err != nil {
			return nil, err
		}
		m.ID = uuid.New()
		return &m, nil
	case config.FamilySleep:
		var m metrics.Sleep
		if err := dec(&m); err != nil {
			return nil, err
		}
		m.ID = uuid.New()
		return &m, nil
	case config.FamilyActivity:
		var m metrics.Activity
		if err := dec(&m); err != nil {
			return nil, err
		}
		m.ID = uuid.New()
		return &m, nil
	case config.FamilyMentalHealth:
		var m metrics.MentalHealth
		if err := dec(&m); err != nil {
			return nil, err
		}
		m.ID = uuid.New()
		return &m, nil
	default:
		return nil, fmt.Errorf("unsupported internal-shape family %q", entry.Family)
	}
}
