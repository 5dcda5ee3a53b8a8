package geo

import "strconv"

// Radius bounds accepted downstream of the store.
const (
	MinRadius = 0
	MaxRadius = 100
)

// Unit is a distance unit in the provider's locationRadius grammar.
type Unit string

// Supported units.
const (
	Meters     Unit = "m"
	Kilometers Unit = "km"
	Feet       Unit = "ft"
	Miles      Unit = "mi"
)

// IsValid reports whether u is a supported unit.
func (u Unit) IsValid() bool {
	switch u {
	case Meters, Kilometers, Feet, Miles:
		return true
	}
	return false
}

// ClampRadius forces r into [MinRadius, MaxRadius].
func ClampRadius(r int) int {
	if r < MinRadius {
		return MinRadius
	}
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}

// RadiusInBounds reports whether r is already within [MinRadius, MaxRadius].
func RadiusInBounds(r int) bool {
	return r >= MinRadius && r <= MaxRadius
}

// FormatRadius annotates a radius with its unit, e.g. "10mi".
func FormatRadius(r int, u Unit) string {
	return strconv.Itoa(r) + string(u)
}

// RadiusInput is the radius as the number input holds it: possibly empty or
// out of range while the user is typing.
type RadiusInput struct {
	value int
	empty bool
}

// RadiusValue returns an input holding v.
func RadiusValue(v int) RadiusInput { return RadiusInput{value: v} }

// EmptyRadius returns an input for a cleared text field.
func EmptyRadius() RadiusInput { return RadiusInput{empty: true} }

// Value returns the held number (0 when empty).
func (r RadiusInput) Value() int { return r.value }

// Empty reports whether the field is cleared.
func (r RadiusInput) Empty() bool { return r.empty }

// SliderValue is what a slider bound to this input displays.
func (r RadiusInput) SliderValue() int {
	if r.empty {
		return 0
	}
	return r.value
}

// Clamp returns the input forced into range. An empty field becomes 0.
func (r RadiusInput) Clamp() RadiusInput {
	if r.empty {
		return RadiusValue(MinRadius)
	}
	return RadiusValue(ClampRadius(r.value))
}

// Settled reports whether the input can be sent downstream as is.
func (r RadiusInput) Settled() bool {
	return !r.empty && RadiusInBounds(r.value)
}
