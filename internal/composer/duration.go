package composer

import "unicode/utf8"

// ScriptSecondsPerChar is the spoken-duration heuristic: every character of a
// script is assumed to take 0.3 seconds.
const ScriptSecondsPerChar = 0.3

// MaterialTooShortWarning is attached to a segment whose script outlasts its
// material.
const MaterialTooShortWarning = "material too short, please reselect"

// EstimatedDuration returns the estimated spoken duration of script in seconds.
func EstimatedDuration(script string) float64 {
	return float64(utf8.RuneCountInString(script)) * ScriptSecondsPerChar
}

// IsCompatible reports whether a material of materialDuration seconds can
// carry a script estimated at estimated seconds.
func IsCompatible(estimated, materialDuration float64) bool {
	return estimated <= materialDuration
}

// MaterialWarning returns the advisory for script against material, or ""
// when no material is attached or the material is long enough.
func MaterialWarning(script string, material *MaterialRef) string {
	if material == nil {
		return ""
	}
	if IsCompatible(EstimatedDuration(script), material.Duration) {
		return ""
	}
	return MaterialTooShortWarning
}

// DurationEstimator supplies a duration for a material whose duration is
// unknown at attach time.
type DurationEstimator func(m Material) float64

const (
	defaultImageDuration = 5.0
	defaultMediaDuration = 10.0
)

// DefaultDurationEstimator gives still images a fixed display time and any
// other material a fixed sample duration.
func DefaultDurationEstimator(m Material) float64 {
	if m.Type == MaterialImage {
		return defaultImageDuration
	}
	return defaultMediaDuration
}
