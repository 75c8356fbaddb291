package lib

import "math"

// FinalityState is the most recent leader finality confirmation
type FinalityState struct {
	Confirmed                bool   `json:"confirmed"`                // false until the first supermajority is observed
	LastConfirmedTickHeight  uint64 `json:"lastConfirmedTickHeight"`  // the tick height the supermajority has voted on or past
	LastConfirmedTimestampMS uint64 `json:"lastConfirmedTimestampMS"` // when that tick was registered
	DurationMS               uint64 `json:"durationMS"`               // confirmation lag at the time of computation
}

// FinalityMS() returns the confirmation lag or MaxUint64 if nothing was ever confirmed
func (f FinalityState) FinalityMS() uint64 {
	if !f.Confirmed {
		return math.MaxUint64
	}
	return f.DurationMS
}
