package preprocessor

import (
	"fmt"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/dataset"
)

// #region validation
// checkColumns verifies the task's input columns exist and no reserved
// column is already taken, on both train and validation tables.
func checkColumns(train, valid *dataset.Table, required []string, reserved []string) error {
	for _, col := range required {
		if !train.HasColumn(col) {
			return fmt.Errorf("%s not in train data", col)
		}
		if valid != nil && !valid.HasColumn(col) {
			return fmt.Errorf("%s not in valid data", col)
		}
	}
	for _, col := range reserved {
		if train.HasColumn(col) {
			return fmt.Errorf("%s is a reserved column name", col)
		}
		if valid != nil && valid.HasColumn(col) {
			return fmt.Errorf("%s is a reserved column name", col)
		}
	}
	return nil
}

// renameColumns copies src columns into their reserved names and drops the
// originals. dst and src run in lockstep.
func renameColumns(t *dataset.Table, src, dst []string) (*dataset.Table, error) {
	out := t.Clone()
	for i, s := range src {
		vals, err := out.Column(s)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(dst[i], vals); err != nil {
			return nil, err
		}
	}
	if err := out.DropColumns(src...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion validation

// #region text-classification
// TextClassification prepares binary and multi-class text classification
// data: text and label columns renamed to their reserved names, stratified
// split when no validation table is supplied, optional class-label encoding.
type TextClassification struct {
	train *dataset.Table
	valid *dataset.Table // nil means split from train
	cfg   Config
}

// NewTextClassification validates columns up front and returns the
// preprocessor. valid may be nil.
func NewTextClassification(train, valid *dataset.Table, cfg Config) (*TextClassification, error) {
	if err := checkColumns(train, valid, []string{cfg.TextColumn, cfg.LabelColumn}, ReservedColumns); err != nil {
		return nil, err
	}
	return &TextClassification{train: train, valid: valid, cfg: cfg}, nil
}

// Prepare splits, renames columns, and optionally encodes labels.
func (p *TextClassification) Prepare() (Result, error) {
	train, valid := p.train, p.valid
	if valid == nil {
		var err error
		train, valid, err = dataset.StratifiedSplit(train, p.cfg.LabelColumn, p.cfg.TestSize, p.cfg.Seed)
		if err != nil {
			return Result{}, fmt.Errorf("split train data: %w", err)
		}
	}

	src := []string{p.cfg.TextColumn, p.cfg.LabelColumn}
	dst := []string{ColText, ColLabel}
	train, err := renameColumns(train, src, dst)
	if err != nil {
		return Result{}, fmt.Errorf("prepare train columns: %w", err)
	}
	valid, err = renameColumns(valid, src, dst)
	if err != nil {
		return Result{}, fmt.Errorf("prepare valid columns: %w", err)
	}

	res := Result{Train: train, Valid: valid}
	if p.cfg.ConvertToClassLabel {
		cl, err := dataset.ClassLabelFromColumn(train, ColLabel)
		if err != nil {
			return Result{}, fmt.Errorf("build class labels: %w", err)
		}
		if err := cl.Encode(train, ColLabel); err != nil {
			return Result{}, fmt.Errorf("encode train labels: %w", err)
		}
		if err := cl.Encode(valid, ColLabel); err != nil {
			return Result{}, fmt.Errorf("encode valid labels: %w", err)
		}
		res.ClassNames = cl.Names()
	}
	return res, nil
}

// #endregion text-classification

// #region regression
// SingleColumnRegression prepares single-target regression data. The split
// is random: stratifying over continuous targets is meaningless.
type SingleColumnRegression struct {
	train *dataset.Table
	valid *dataset.Table
	cfg   Config
}

// NewSingleColumnRegression validates columns up front. valid may be nil.
func NewSingleColumnRegression(train, valid *dataset.Table, cfg Config) (*SingleColumnRegression, error) {
	if err := checkColumns(train, valid, []string{cfg.TextColumn, cfg.LabelColumn}, ReservedColumns); err != nil {
		return nil, err
	}
	return &SingleColumnRegression{train: train, valid: valid, cfg: cfg}, nil
}

// Prepare splits randomly and renames columns. Targets are never encoded.
func (p *SingleColumnRegression) Prepare() (Result, error) {
	train, valid := p.train, p.valid
	if valid == nil {
		var err error
		train, valid, err = dataset.RandomSplit(train, p.cfg.TestSize, p.cfg.Seed)
		if err != nil {
			return Result{}, fmt.Errorf("split train data: %w", err)
		}
	}

	src := []string{p.cfg.TextColumn, p.cfg.LabelColumn}
	dst := []string{ColText, ColLabel}
	train, err := renameColumns(train, src, dst)
	if err != nil {
		return Result{}, fmt.Errorf("prepare train columns: %w", err)
	}
	valid, err = renameColumns(valid, src, dst)
	if err != nil {
		return Result{}, fmt.Errorf("prepare valid columns: %w", err)
	}
	return Result{Train: train, Valid: valid}, nil
}

// #endregion regression

// #region seq2seq
// Seq2Seq prepares source/target text pairs. The split stratifies on the
// target column, so targets that repeat across rows are expected.
type Seq2Seq struct {
	train *dataset.Table
	valid *dataset.Table
	cfg   Config
}

// NewSeq2Seq validates columns up front. valid may be nil.
func NewSeq2Seq(train, valid *dataset.Table, cfg Config) (*Seq2Seq, error) {
	if err := checkColumns(train, valid, []string{cfg.TextColumn, cfg.LabelColumn}, ReservedColumns); err != nil {
		return nil, err
	}
	return &Seq2Seq{train: train, valid: valid, cfg: cfg}, nil
}

// Prepare splits and renames columns. No label encoding for seq2seq.
func (p *Seq2Seq) Prepare() (Result, error) {
	train, valid := p.train, p.valid
	if valid == nil {
		var err error
		train, valid, err = dataset.StratifiedSplit(train, p.cfg.LabelColumn, p.cfg.TestSize, p.cfg.Seed)
		if err != nil {
			return Result{}, fmt.Errorf("split train data: %w", err)
		}
	}

	src := []string{p.cfg.TextColumn, p.cfg.LabelColumn}
	dst := []string{ColText, ColLabel}
	train, err := renameColumns(train, src, dst)
	if err != nil {
		return Result{}, fmt.Errorf("prepare train columns: %w", err)
	}
	valid, err = renameColumns(valid, src, dst)
	if err != nil {
		return Result{}, fmt.Errorf("prepare valid columns: %w", err)
	}
	return Result{Train: train, Valid: valid}, nil
}

// #endregion seq2seq
