package models

import "fmt"

var (
	ErrInvalidParameterSet  = fmt.Errorf("invalid parameter set")
	ErrParameterOutOfDomain = fmt.Errorf("parameter value outside the declared grid domain")
	ErrUnknownParameter     = fmt.Errorf("unknown parameter name")
	ErrNoTradingDays        = fmt.Errorf("no trading days in the requested range")
)
