package combat

import "errors"

// Sentinel kinds for combat errors. Validation rejections are verdicts, not
// errors; these cover caller contract violations only.
var (
	ErrUnknownWeapon = errors.New("unknown weapon type")
)
