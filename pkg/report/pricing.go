package report

import "github.com/matzehuels/secassess/pkg/record"

// Pricing constants.
const (
	HoursPerMonth   = 160
	DefaultCurrency = "ILS"
	DefaultMode     = "price"
)

// Phase is a share of the project timeline.
type Phase struct {
	Name       string
	Percentage float64
	Months     float64
}

// Label formats the phase as "name:  P%  —  M months".
func (p Phase) Label() string {
	return Clean(p.Name) + ":  " + formatFloat(p.Percentage) + "%  " + Dash + "  " + formatFloat(p.Months) + " months"
}

// Pricing is the cost estimate of a record. Inputs are copied from the
// record; MonthlyRate, Base, Contingency and Total are derived:
//
//	MonthlyRate = HourlyRate * HoursPerMonth
//	Base        = MonthlyRate * Engineers * Duration
//	Contingency = Base * ContingencyPct / 100
//	Total       = Base + Contingency
type Pricing struct {
	Engineers      float64
	Duration       float64
	HourlyRate     float64
	ContingencyPct float64
	Currency       string
	Mode           string
	Phases         []Phase

	MonthlyRate float64
	Base        float64
	Contingency float64
	Total       float64
}

// ComputePricing derives the cost figures. It reports false when the
// record has no engineers, in which case the report has no pricing.
func ComputePricing(in record.Pricing) (Pricing, bool) {
	if in.Engineers.Float() <= 0 {
		return Pricing{}, false
	}
	p := Pricing{
		Engineers:      in.Engineers.Float(),
		Duration:       in.Duration.Float(),
		HourlyRate:     in.HourlyRate.Float(),
		ContingencyPct: in.Contingency.Float(),
		Currency:       string(in.Currency),
		Mode:           string(in.EstimationMode),
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Mode == "" {
		p.Mode = DefaultMode
	}
	for _, ph := range in.Phases {
		p.Phases = append(p.Phases, Phase{
			Name:       string(ph.Name),
			Percentage: ph.Percentage.Float(),
			Months:     ph.Months.Float(),
		})
	}

	p.MonthlyRate = p.HourlyRate * HoursPerMonth
	p.Base = p.MonthlyRate * p.Engineers * p.Duration
	p.Contingency = p.Base * (p.ContingencyPct / 100)
	p.Total = p.Base + p.Contingency
	return p, true
}
