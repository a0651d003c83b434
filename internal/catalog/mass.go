package catalog

import "math"

// Mass is a fixed-point weight in milligrams.
type Mass int64

// Centikg is a total weight in hundredths of a kilogram.
type Centikg int64

const (
	Milligram Mass = 1
	Gram           = 1000 * Milligram
	Kilogram       = 1000 * Gram

	// KgPerLb is the exact international pound.
	KgPerLb = 0.453592
)

func KgToMass(kg float64) Mass {
	return Mass(math.Round(kg * float64(Kilogram)))
}

func LbToMass(lb float64) Mass {
	return KgToMass(lb * KgPerLb)
}

func (m Mass) Kg() float64 {
	return float64(m) / float64(Kilogram)
}

// Centikg rounds m to hundredths of a kilogram, halves away from zero.
func (m Mass) Centikg() Centikg {
	const unit = int64(10 * Gram)
	v := int64(m)
	if v < 0 {
		return -Mass(-v).Centikg()
	}
	return Centikg((v + unit/2) / unit)
}

func (c Centikg) Kg() float64 {
	return float64(c) / 100
}

// KgToCentikg rounds kg to hundredths.
func KgToCentikg(kg float64) Centikg {
	return Centikg(math.Round(kg * 100))
}
