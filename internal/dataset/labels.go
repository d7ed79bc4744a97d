package dataset

import (
	"fmt"
	"sort"
	"strconv"
)

// #region class-label
// ClassLabel maps label names to stable integer codes. Codes follow the
// sorted order of the distinct names, so the mapping is independent of row
// order and identical across train and validation splits.
type ClassLabel struct {
	names []string
	codes map[string]int
}

// ClassLabelFromColumn builds a ClassLabel from the distinct values of a
// label column.
func ClassLabelFromColumn(t *Table, labelCol string) (*ClassLabel, error) {
	vals, err := t.Column(labelCol)
	if err != nil {
		return nil, fmt.Errorf("class label: %w", err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			names = append(names, v)
		}
	}
	sort.Strings(names)

	codes := make(map[string]int, len(names))
	for i, n := range names {
		codes[n] = i
	}
	return &ClassLabel{names: names, codes: codes}, nil
}

// Names returns the label names in code order.
func (c *ClassLabel) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Code returns the integer code for a label name.
func (c *ClassLabel) Code(name string) (int, error) {
	code, ok := c.codes[name]
	if !ok {
		return 0, fmt.Errorf("label %q not in class label set", name)
	}
	return code, nil
}

// Encode rewrites a label column in place with integer codes. A value
// outside the class-label set is an error, not a silent new code: the
// validation split must not invent labels the train split never saw.
func (c *ClassLabel) Encode(t *Table, labelCol string) error {
	vals, err := t.Column(labelCol)
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	encoded := make([]string, len(vals))
	for i, v := range vals {
		code, ok := c.codes[v]
		if !ok {
			return fmt.Errorf("encode labels: label %q not in class label set", v)
		}
		encoded[i] = strconv.Itoa(code)
	}
	if err := t.SetColumn(labelCol, encoded); err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	return nil
}

// #endregion class-label
