// Package stage classifies an order's progress flags into a single delivery stage.
package stage

// Stage is an ordinal position in the fixed delivery progression.
type Stage int

const (
	Processing Stage = iota
	Accepted
	PickedUp
	EnRoute
	Delivered
)

// Count is the number of stages in the progression.
const Count = int(Delivered) + 1

var labels = [Count]string{
	Processing: "Processing",
	Accepted:   "Accepted",
	PickedUp:   "Picked up",
	EnRoute:    "On the way",
	Delivered:  "Delivered",
}

// String returns the display label for the stage.
func (s Stage) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return labels[s]
}

// Valid reports whether s is one of the five defined stages.
func (s Stage) Valid() bool {
	return s >= Processing && s <= Delivered
}

// Flags are the progress booleans reported by the backend for an order.
// Storage order carries no meaning; Derive imposes the progression.
type Flags struct {
	OrderAccepted bool
	ItemPicked    bool
	RiderEnRoute  bool
	ArrivingSoon  bool
	Completed     bool
}

// Derive maps flags to a stage using highest-true-wins: the most advanced
// flag that is set decides the stage, regardless of the others. ArrivingSoon
// and Completed both render as Delivered.
func Derive(f Flags) Stage {
	switch {
	case f.Completed:
		return Delivered
	case f.ArrivingSoon:
		return Delivered
	case f.RiderEnRoute:
		return EnRoute
	case f.ItemPicked:
		return PickedUp
	case f.OrderAccepted:
		return Accepted
	default:
		return Processing
	}
}

// Inconsistent reports whether an advanced flag is set while an earlier one
// is not, e.g. completed without ever being accepted. Derive still returns the
// highest stage for such snapshots; callers use this only to surface the
// backend contract violation.
func Inconsistent(f Flags) bool {
	ordered := []bool{f.OrderAccepted, f.ItemPicked, f.RiderEnRoute, f.ArrivingSoon || f.Completed}
	seenFalse := false
	for _, set := range ordered {
		if !set {
			seenFalse = true
			continue
		}
		if seenFalse {
			return true
		}
	}
	return false
}

// Step is one rendered position in the progression.
type Step struct {
	Stage   Stage
	Label   string
	Reached bool
	Current bool
}

// Steps returns all five stages with stages 0..current marked reached and the
// rest pending.
func Steps(current Stage) []Step {
	steps := make([]Step, Count)
	for i := range steps {
		s := Stage(i)
		steps[i] = Step{
			Stage:   s,
			Label:   s.String(),
			Reached: s <= current,
			Current: s == current,
		}
	}
	return steps
}
