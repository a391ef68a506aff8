package nullity

import (
	"fmt"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// Classify maps a raw value onto a Present or Missing cell under the
// given policy. It is a pure function: NaN always classifies as missing,
// a value equal by value to any sentinel classifies as missing, and
// everything else comes back as Present unchanged. The only error is an
// unrecognized column type.
func Classify(raw table.Value, dtype table.DType, policy Policy) (table.Cell, error) {
	if !dtype.IsValid() {
		return table.Cell{}, apperrors.NewConfigError(fmt.Sprintf("unrecognized column type %d", int(dtype)), nil)
	}
	if raw.IsNaN() {
		return table.Missing(), nil
	}
	if policy.isSentinel(raw) {
		return table.Missing(), nil
	}
	return table.Present(raw), nil
}

// Classifier applies a validated policy across whole tables.
type Classifier struct {
	policy Policy
}

// NewClassifier validates the policy once and returns a classifier bound
// to it.
func NewClassifier(policy Policy) (*Classifier, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{policy: policy}, nil
}

// Policy returns the bound policy.
func (c *Classifier) Policy() Policy { return c.policy }

// Classify classifies a single raw value for a column of the given type.
func (c *Classifier) Classify(raw table.Value, dtype table.DType) (table.Cell, error) {
	return Classify(raw, dtype, c.policy)
}

// ClassifyTable turns a loader-produced raw table into a classified
// table. Cells the loader marked null become Missing directly; every
// other cell goes through the sentinel classifier.
func (c *Classifier) ClassifyTable(raw table.RawTable) (*table.Table, error) {
	columns := make([]table.Column, 0, len(raw.Columns))
	for _, rawCol := range raw.Columns {
		cells := make([]table.Cell, len(rawCol.Cells))
		for i, rc := range rawCol.Cells {
			if rc.Null {
				cells[i] = table.Missing()
				continue
			}
			cell, err := Classify(rc.Value, rawCol.DType, c.policy)
			if err != nil {
				return nil, fmt.Errorf("classify column %q: %w", rawCol.Name, err)
			}
			cells[i] = cell
		}
		col, err := table.NewColumn(rawCol.Name, rawCol.DType, cells)
		if err != nil {
			return nil, fmt.Errorf("build column %q: %w", rawCol.Name, err)
		}
		columns = append(columns, col)
	}

	var opts []table.Option
	if raw.Labels != nil {
		opts = append(opts, table.WithLabels(raw.Labels))
	}
	return table.New(raw.Name, columns, opts...)
}
