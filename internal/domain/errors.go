package domain

import "errors"

var (
	// ErrContractViolation marks page input that breaks the conversion
	// collaborator's contract (negative page index, nil grid). The only
	// error that fails a whole document.
	ErrContractViolation = errors.New("page input violates contract")

	ErrCaseNotFound   = errors.New("master case not found")
	ErrRecordNotFound = errors.New("transaction record not found")
	ErrRuleNotFound   = errors.New("temporal rule not found")
	ErrNoIdentifier   = errors.New("record has no identifier")
)
