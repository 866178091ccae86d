package usage

import "errors"

// ErrQuotaExceeded indicates the user's plan cannot absorb the request.
var ErrQuotaExceeded = errors.New("plan quota exceeded")
