package dataset

import (
	"fmt"
	"math/rand"
	"sort"
)

// #region stratified
// StratifiedSplit splits rows into train/validation tables, preserving the
// label distribution: each label group is shuffled with the seed and a
// proportional share (at least one row) goes to validation. Labels with
// fewer than two rows cannot appear in both splits and are rejected.
func StratifiedSplit(t *Table, labelCol string, testSize float64, seed int64) (*Table, *Table, error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v out of range (0,1)", testSize)
	}
	labels, err := t.Column(labelCol)
	if err != nil {
		return nil, nil, fmt.Errorf("stratified split: %w", err)
	}

	groups := make(map[string][]int)
	for i, lab := range labels {
		groups[lab] = append(groups[lab], i)
	}

	// Deterministic label order so the same seed always yields the same split.
	names := make([]string, 0, len(groups))
	for lab := range groups {
		names = append(names, lab)
	}
	sort.Strings(names)

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, validIdx []int
	for _, lab := range names {
		idx := groups[lab]
		if len(idx) < 2 {
			return nil, nil, fmt.Errorf("label %q has %d row(s), need at least 2 to stratify", lab, len(idx))
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nValid := int(float64(len(idx)) * testSize)
		if nValid < 1 {
			nValid = 1
		}
		if nValid >= len(idx) {
			nValid = len(idx) - 1
		}
		validIdx = append(validIdx, idx[:nValid]...)
		trainIdx = append(trainIdx, idx[nValid:]...)
	}

	sort.Ints(trainIdx)
	sort.Ints(validIdx)
	return t.subset(trainIdx), t.subset(validIdx), nil
}

// #endregion stratified

// #region random
// RandomSplit splits rows into train/validation tables without regard to
// any label column. Used for regression targets, where stratification over
// continuous values is meaningless.
func RandomSplit(t *Table, testSize float64, seed int64) (*Table, *Table, error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v out of range (0,1)", testSize)
	}
	n := t.NumRows()
	if n < 2 {
		return nil, nil, fmt.Errorf("need at least 2 rows to split, have %d", n)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nValid := int(float64(n) * testSize)
	if nValid < 1 {
		nValid = 1
	}
	if nValid >= n {
		nValid = n - 1
	}

	validIdx := append([]int(nil), idx[:nValid]...)
	trainIdx := append([]int(nil), idx[nValid:]...)
	sort.Ints(trainIdx)
	sort.Ints(validIdx)
	return t.subset(trainIdx), t.subset(validIdx), nil
}

// #endregion random
