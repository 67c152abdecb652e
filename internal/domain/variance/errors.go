package variance

import "errors"

var (
	ErrAlertNotFound            = errors.New("variance alert not found")
	ErrAlertAlreadyAcknowledged = errors.New("variance alert has already been acknowledged")
	ErrFutureDate               = errors.New("variance can only be generated for past days")
)
