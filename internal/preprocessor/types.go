package preprocessor

import "github.com/tunesmith-ml/tunesmith/go-controller/internal/dataset"

// #region reserved-columns
// Reserved output column names. Input tables must not already use them.
const (
	ColText         = "autotrain_text"
	ColLabel        = "autotrain_label"
	ColPrompt       = "autotrain_prompt"
	ColContext      = "autotrain_context"
	ColRejectedText = "autotrain_rejected_text"
	ColPromptStart  = "autotrain_prompt_start"
)

// ReservedColumns are reserved for every task type.
var ReservedColumns = []string{ColText, ColLabel}

// LLMReservedColumns are additionally reserved for LLM fine-tuning data.
var LLMReservedColumns = []string{ColPrompt, ColContext, ColRejectedText, ColPromptStart}

// #endregion reserved-columns

// #region config
// Config holds the shared knobs for all preprocessors.
type Config struct {
	TextColumn  string
	LabelColumn string
	TestSize    float64 // validation share when no validation table is given
	Seed        int64   // split shuffle seed

	// ConvertToClassLabel encodes the label column as integer class codes
	// (classification tasks only).
	ConvertToClassLabel bool
}

// DefaultConfig returns the standard split settings.
func DefaultConfig() Config {
	return Config{
		TestSize: 0.2,
		Seed:     42,
	}
}

// #endregion config

// #region result
// Result is a prepared train/validation pair, ready for upload.
type Result struct {
	Train *dataset.Table
	Valid *dataset.Table

	// ClassNames lists label names in code order when labels were encoded,
	// nil otherwise.
	ClassNames []string
}

// #endregion result
