package motion

// Kind names the four supported motion models.
type Kind string

const (
	KindCP   Kind = "CP"
	KindCV   Kind = "CV"
	KindCA   Kind = "CA"
	KindCTRV Kind = "CTRV"
)

// DefaultPriority is the tie-break order used when several models tie on
// innovation norm: CV > CA > CTRV > CP.
var DefaultPriority = []Kind{KindCV, KindCA, KindCTRV, KindCP}

// New builds the concrete Model for a Kind.
func New(kind Kind) Model {
	switch kind {
	case KindCP:
		return CP{}
	case KindCV:
		return CV{}
	case KindCA:
		return CA{}
	case KindCTRV:
		return CTRV{}
	default:
		return nil
	}
}

// Bank builds the configured subset of models, in DefaultPriority order.
func Bank(kinds []Kind) []Model {
	ordered, models := BankWithKinds(kinds)
	_ = ordered
	return models
}

// BankWithKinds builds the configured subset of models, in DefaultPriority
// order, alongside the Kind each model was built from.
func BankWithKinds(kinds []Kind) ([]Kind, []Model) {
	present := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		present[k] = true
	}
	orderedKinds := make([]Kind, 0, len(kinds))
	models := make([]Model, 0, len(kinds))
	for _, k := range DefaultPriority {
		if present[k] {
			orderedKinds = append(orderedKinds, k)
			models = append(models, New(k))
		}
	}
	return orderedKinds, models
}
