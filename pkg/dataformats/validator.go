// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dataformats

import "fmt"

// AnomalyType represents different types of measurement anomalies
type AnomalyType int

const (
	AnomalyHumidityRange AnomalyType = iota
	AnomalyTemperatureRange
	AnomalyPressureRange
	AnomalyTxPowerRange
	AnomalyBatteryRange
	AnomalyMissingField
)

// Plausible ranges for the sensors fitted to a tag
const (
	minTemperature = -40.0
	maxTemperature = 85.0
	minPressure    = 50000.0
	maxPressure    = 115534.0
	minTxPower     = -40
	maxTxPower     = 20
	minBattery     = 1.6
	maxBattery     = 3.7
)

// ValidationError represents a measurement validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateMeasurement checks decoded values against physical plausibility
// Returns a slice of validation errors (empty if the measurement is plausible)
func ValidateMeasurement(m *Measurement) []ValidationError {
	errors := []ValidationError{}

	if m.Humidity != nil && *m.Humidity > 100.0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyHumidityRange,
			Message: fmt.Sprintf("Humidity above 100%% (%.2f%%)", *m.Humidity),
			Details: map[string]interface{}{"value": *m.Humidity, "max": 100.0},
		})
	}

	if m.Temperature != nil && (*m.Temperature < minTemperature || *m.Temperature > maxTemperature) {
		errors = append(errors, ValidationError{
			Type:    AnomalyTemperatureRange,
			Message: fmt.Sprintf("Temperature out of range (%.2f°C, valid: %.0f to %.0f°C)", *m.Temperature, minTemperature, maxTemperature),
			Details: map[string]interface{}{"value": *m.Temperature, "min": minTemperature, "max": maxTemperature},
		})
	}

	if m.Pressure != nil && (*m.Pressure < minPressure || *m.Pressure > maxPressure) {
		errors = append(errors, ValidationError{
			Type:    AnomalyPressureRange,
			Message: fmt.Sprintf("Pressure out of range (%.0f Pa, valid: %.0f to %.0f Pa)", *m.Pressure, minPressure, maxPressure),
			Details: map[string]interface{}{"value": *m.Pressure, "min": minPressure, "max": maxPressure},
		})
	}

	if m.TxPower != nil && (*m.TxPower < minTxPower || *m.TxPower > maxTxPower) {
		errors = append(errors, ValidationError{
			Type:    AnomalyTxPowerRange,
			Message: fmt.Sprintf("TX power out of range (%d dBm, valid: %d to %d dBm)", *m.TxPower, minTxPower, maxTxPower),
			Details: map[string]interface{}{"value": *m.TxPower, "min": minTxPower, "max": maxTxPower},
		})
	}

	if m.BatteryVoltage != nil && (*m.BatteryVoltage < minBattery || *m.BatteryVoltage > maxBattery) {
		errors = append(errors, ValidationError{
			Type:    AnomalyBatteryRange,
			Message: fmt.Sprintf("Battery voltage out of range (%.3f V, valid: %.1f to %.1f V)", *m.BatteryVoltage, minBattery, maxBattery),
			Details: map[string]interface{}{"value": *m.BatteryVoltage, "min": minBattery, "max": maxBattery},
		})
	}

	// Every format carries temperature
	if m.Temperature == nil {
		errors = append(errors, ValidationError{
			Type:    AnomalyMissingField,
			Message: "Temperature not available",
			Details: map[string]interface{}{"field": FieldTemperature.String()},
		})
	}

	return errors
}
