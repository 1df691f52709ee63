package logic

// Decide evaluates the hysteresis policy for one cycle.
//
// The unit is switched on only when the reading is strictly above the
// switch-on threshold, the unit is off, and activation is not restricted.
// A running unit is switched off when the reading drops strictly below the
// switch-off threshold, or whenever the restricted window is active.
// Everything else — including readings exactly on a threshold and any
// reading inside the band — is NO_CHANGE, so the unit never chatters
// around the thresholds.
func Decide(temp float64, power, restricted bool, band Band) Decision {
	if power && restricted {
		return DecisionTurnOff
	}
	if temp > band.On && !power && !restricted {
		return DecisionTurnOn
	}
	if temp < band.Off && power {
		return DecisionTurnOff
	}
	return DecisionNoChange
}
