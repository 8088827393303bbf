package forecast

import "errors"

// ErrValidation marks malformed input reaching the cascade
// (out-of-range month/day, negative amounts).
var ErrValidation = errors.New("validation error")

// ErrConstruction marks a failure while building one candidate forecast
// record (e.g. missing month for a synthesized date). The record is skipped;
// the run continues.
var ErrConstruction = errors.New("construction error")
