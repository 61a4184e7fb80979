// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package alerting derives automatic alerts from sensor readings using
// configured water-level thresholds.
package alerting

import (
	"fmt"

	"github.com/floodwatch-io/floodwatch/internal/models"
)

// Evaluator classifies readings against the warning and critical water-level
// thresholds. Both bounds are exclusive: a reading exactly at a threshold
// does not raise an alert of that severity.
type Evaluator struct {
	warningLevel  float64
	criticalLevel float64
}

// NewEvaluator creates an Evaluator with the given thresholds in meters.
func NewEvaluator(warningLevel, criticalLevel float64) *Evaluator {
	return &Evaluator{
		warningLevel:  warningLevel,
		criticalLevel: criticalLevel,
	}
}

// Evaluate returns the alert a reading should raise, or nil if the water
// level is below the warning threshold. Critical takes precedence.
func (e *Evaluator) Evaluate(reading *models.SensorReading) *models.AlertDraft {
	switch {
	case reading.WaterLevel > e.criticalLevel:
		return &models.AlertDraft{
			Title:       fmt.Sprintf("Critical Water Level at Sensor %s", reading.SensorID),
			Description: fmt.Sprintf("Water level reached %.2fm.", reading.WaterLevel),
			Level:       models.AlertLevelCritical,
			SensorID:    reading.SensorID,
		}
	case reading.WaterLevel > e.warningLevel:
		return &models.AlertDraft{
			Title:       fmt.Sprintf("Warning: High Water Level at Sensor %s", reading.SensorID),
			Description: fmt.Sprintf("Water level at %.2fm.", reading.WaterLevel),
			Level:       models.AlertLevelWarning,
			SensorID:    reading.SensorID,
		}
	}
	return nil
}

// RiskLevel classifies a water level into the risk band used by the risk
// map: "high" above the critical threshold, "medium" above the warning
// threshold, "low" otherwise.
func (e *Evaluator) RiskLevel(waterLevel float64) string {
	switch {
	case waterLevel > e.criticalLevel:
		return "high"
	case waterLevel > e.warningLevel:
		return "medium"
	}
	return "low"
}
