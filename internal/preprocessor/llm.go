package preprocessor

import (
	"fmt"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/dataset"
)

// #region llm-config
// LLMConfig selects the input columns for LLM fine-tuning data. Provide
// either TextColumn, or PromptColumn plus RejectedTextColumn, never both.
type LLMConfig struct {
	TextColumn         string
	PromptColumn       string
	RejectedTextColumn string
}

// #endregion llm-config

// #region llm
// LLM prepares causal / preference fine-tuning data. Unlike the
// classification preprocessors it never splits: when no validation table is
// given, the train table doubles as validation so downstream evaluation
// always has a split to read.
type LLM struct {
	train *dataset.Table
	valid *dataset.Table
	cfg   LLMConfig
}

// NewLLM validates the column selection and the tables. valid may be nil.
func NewLLM(train, valid *dataset.Table, cfg LLMConfig) (*LLM, error) {
	if cfg.TextColumn != "" && (cfg.PromptColumn != "" || cfg.RejectedTextColumn != "") {
		return nil, fmt.Errorf("provide either text column or prompt and rejected text columns")
	}
	if cfg.TextColumn == "" && (cfg.PromptColumn == "" || cfg.RejectedTextColumn == "") {
		return nil, fmt.Errorf("provide either text column or prompt and rejected text columns")
	}

	required := []string{cfg.TextColumn}
	if cfg.TextColumn == "" {
		required = []string{cfg.PromptColumn, cfg.RejectedTextColumn}
	}
	reserved := append(append([]string{}, ReservedColumns...), LLMReservedColumns...)
	if err := checkColumns(train, valid, required, reserved); err != nil {
		return nil, err
	}
	return &LLM{train: train, valid: valid, cfg: cfg}, nil
}

// Prepare renames the selected columns into their reserved names.
func (p *LLM) Prepare() (Result, error) {
	train, valid := p.train, p.valid
	if valid == nil {
		valid = train
	}

	var src, dst []string
	if p.cfg.TextColumn != "" {
		src = []string{p.cfg.TextColumn}
		dst = []string{ColText}
	} else {
		src = []string{p.cfg.PromptColumn, p.cfg.RejectedTextColumn}
		dst = []string{ColPrompt, ColRejectedText}
	}

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

// #endregion llm
