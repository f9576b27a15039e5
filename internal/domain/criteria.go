package domain

// Criteria chain editing. These operations maintain the chain invariants as
// the caller adds and removes steps interactively:
//
//   - order is 1-based and contiguous
//   - every non-last step has a connector, the last step has none
//
// FinalizeSteps repairs any transient inconsistency before the chain is
// handed to the compiler or persisted.

// AppendStep inserts step immediately after position after (0-based) and
// sets the predecessor's connector to connector. Passing after == len-1
// appends at the end. The new step always starts with a nil connector.
func AppendStep(steps []CriteriaStep, after int, connector string, step CriteriaStep) ([]CriteriaStep, error) {
	if after < 0 || after >= len(steps) {
		return nil, ErrValidation("append position %d out of range", after)
	}
	if connector != ConnectorAnd && connector != ConnectorOr {
		return nil, ErrValidation("connector must be %s or %s", ConnectorAnd, ConnectorOr)
	}

	step.Connector = nil
	out := make([]CriteriaStep, 0, len(steps)+1)
	out = append(out, steps[:after+1]...)
	out = append(out, step)
	out = append(out, steps[after+1:]...)

	// The target step now has a successor and must carry the chosen connector.
	c := connector
	out[after].Connector = &c

	return FinalizeSteps(out), nil
}

// RemoveStep deletes the step at position i (0-based). The predecessor
// inherits the removed step's outbound connector so the chain stays
// contiguous. The last remaining step cannot be removed.
func RemoveStep(steps []CriteriaStep, i int) ([]CriteriaStep, error) {
	if i < 0 || i >= len(steps) {
		return nil, ErrValidation("remove position %d out of range", i)
	}
	if len(steps) == 1 {
		return nil, ErrValidation("an extract must keep at least one criteria step")
	}

	removed := steps[i]
	out := make([]CriteriaStep, 0, len(steps)-1)
	out = append(out, steps[:i]...)
	out = append(out, steps[i+1:]...)

	if i > 0 {
		out[i-1].Connector = removed.Connector
	}

	return FinalizeSteps(out), nil
}

// FinalizeSteps renumbers the chain to a contiguous 1-based order and forces
// the last step's connector to nil. It returns a copy; the input is not
// modified.
func FinalizeSteps(steps []CriteriaStep) []CriteriaStep {
	out := make([]CriteriaStep, len(steps))
	copy(out, steps)
	for i := range out {
		out[i].Order = i + 1
	}
	if n := len(out); n > 0 {
		out[n-1].Connector = nil
	}
	return out
}

// ValidateSteps checks that every step carries a field, operator, and value,
// and that every non-last connector is a legal token.
func ValidateSteps(steps []CriteriaStep) error {
	for i, s := range steps {
		if s.FieldID == 0 {
			return ErrValidation("criteria step %d: field is required", i+1)
		}
		if s.OperatorID == 0 {
			return ErrValidation("criteria step %d: operator is required", i+1)
		}
		if s.Value == "" {
			return ErrValidation("criteria step %d: value is required", i+1)
		}
		if i < len(steps)-1 {
			if s.Connector == nil {
				return ErrValidation("criteria step %d: connector is required before step %d", i+1, i+2)
			}
			if *s.Connector != ConnectorAnd && *s.Connector != ConnectorOr {
				return ErrValidation("criteria step %d: connector must be %s or %s", i+1, ConnectorAnd, ConnectorOr)
			}
		}
	}
	return nil
}
