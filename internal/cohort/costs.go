package cohort

import (
	"fmt"

	"stroke-mcs/internal/economics"
)

// BaseYears records the price year of each cost group.
type BaseYears struct {
	Ischemic int
	ICH      int
	Annual   int
	Death    int
	IVT      int
	EVT      int
	Transfer int
}

func sameYear(year int) BaseYears {
	return BaseYears{year, year, year, year, year, year, year}
}

// CostTable is immutable once built; Inflate returns a new table.
type CostTable struct {
	Year int // 0 while the groups are still in their own base years

	Days90Ischemic [Death]float64
	Days90ICH      [Death]float64
	Annual         [Death]float64
	DeathCost      float64
	IVT            float64
	EVT            float64
	Transfer       float64

	base BaseYears
}

// DefaultCosts returns the uninflated cost table.
func DefaultCosts() CostTable {
	return CostTable{
		Days90Ischemic: [Death]float64{0, 6302, 9448, 14918, 26218, 32502, 26071},
		Days90ICH:      [Death]float64{0, 9500, 15500, 18700, 27400, 27300, 27300},
		Annual:         [Death]float64{0, 2921, 3905, 6501, 16922, 42335, 39723},
		DeathCost:      8100,
		IVT:            13419,
		EVT:            6400,
		Transfer:       763,
		base: BaseYears{
			Ischemic: 2014,
			ICH:      2008,
			Annual:   2014,
			Death:    2008,
			IVT:      2014,
			EVT:      2014,
			Transfer: 2010,
		},
	}
}

func (c CostTable) baseYears() BaseYears {
	if c.Year == 0 {
		return c.base
	}
	return sameYear(c.Year)
}

// Inflate converts every cost group to targetYear dollars.
func Inflate(c CostTable, targetYear int) (CostTable, error) {
	if c.Year == targetYear {
		return c, nil
	}
	base := c.baseYears()
	out := CostTable{Year: targetYear, base: sameYear(targetYear)}

	var err error
	conv := func(cost float64, from int) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = economics.Convert(cost, from, targetYear)
		return v
	}

	for s := range out.Annual {
		out.Days90Ischemic[s] = conv(c.Days90Ischemic[s], base.Ischemic)
		out.Days90ICH[s] = conv(c.Days90ICH[s], base.ICH)
		out.Annual[s] = conv(c.Annual[s], base.Annual)
	}
	out.DeathCost = conv(c.DeathCost, base.Death)
	out.IVT = conv(c.IVT, base.IVT)
	out.EVT = conv(c.EVT, base.EVT)
	out.Transfer = conv(c.Transfer, base.Transfer)

	if err != nil {
		return CostTable{}, fmt.Errorf("inflating costs to %d: %w", targetYear, err)
	}
	return out, nil
}

// firstYear blends 90-day acute costs with three quarters of a steady-state year.
func (c CostTable) firstYear(hemorrhagic, ischemic Distribution) float64 {
	const mult90 = 90.0 / 360.0
	const multRest = 1 - mult90
	cost := 0.0
	for s := GenPop; s < Death; s++ {
		cost += hemorrhagic[s] * (mult90*c.Days90ICH[s] + multRest*c.Annual[s])
		cost += ischemic[s] * (mult90*c.Days90Ischemic[s] + multRest*c.Annual[s])
	}
	cost += hemorrhagic[Death] * c.DeathCost
	cost += ischemic[Death] * c.DeathCost
	return cost
}

// annual charges every living state its yearly cost and the dead mass the death cost.
func (c CostTable) annual(d Distribution) float64 {
	cost := 0.0
	for s := GenPop; s < Death; s++ {
		cost += d[s] * c.Annual[s]
	}
	cost += d[Death] * c.DeathCost
	return cost
}
