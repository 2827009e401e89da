package abtest

// Observation is the outcome of one experiment group.
type Observation struct {
	Conversions int `json:"conversions" yaml:"conversions"`
	Visitors    int `json:"visitors" yaml:"visitors"`
}

// observationCheck reports a problem with o. group suffixes the field names
// in the message, as in "visitors_a".
type observationCheck func(o Observation, group string) error

var observationChecks = []observationCheck{
	func(o Observation, group string) error {
		if o.Visitors <= 0 {
			return invalid("%s %d must be positive", field("visitors", group), o.Visitors)
		}
		return nil
	},
	func(o Observation, group string) error {
		if o.Conversions < 0 {
			return invalid("%s %d must not be negative", field("conversions", group), o.Conversions)
		}
		return nil
	},
	func(o Observation, group string) error {
		if o.Conversions > o.Visitors {
			return invalid("%s %d exceed %s %d",
				field("conversions", group), o.Conversions, field("visitors", group), o.Visitors)
		}
		return nil
	},
}

func field(name, group string) string { return name + "_" + group }

// Rate is Conversions/Visitors. Only meaningful once validated.
func (o Observation) Rate() float64 {
	return float64(o.Conversions) / float64(o.Visitors)
}

// validatePair runs each check on both groups before moving to the next:
// visitor counts first, then negative conversions, then conversions above
// visitors.
func validatePair(a, b Observation) error {
	for _, check := range observationChecks {
		if err := check(a, "a"); err != nil {
			return err
		}
		if err := check(b, "b"); err != nil {
			return err
		}
	}
	return nil
}
