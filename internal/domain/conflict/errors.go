package conflict

import "errors"

var ErrConflictNotFound = errors.New("conflict not found")
