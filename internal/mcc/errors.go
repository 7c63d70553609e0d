package mcc

import "errors"

var (
	// ErrBootstrapExhausted reports that the seed bootstrap spent its
	// evaluation budget before the required number of viable seeds existed
	// simultaneously.
	ErrBootstrapExhausted = errors.New("bootstrap evaluation budget exhausted")

	// ErrSeedVerification reports that a bootstrap seed failed the final
	// cross-viability check against the other side's full seed set.
	ErrSeedVerification = errors.New("seed failed cross-viability verification")

	// ErrPopulationCollapse reports that a population queue reached zero
	// members while the scheduler was running.
	ErrPopulationCollapse = errors.New("population collapsed to zero members")
)
