package domain

import "errors"

// RevertError carries the reason a node reported for a reverted call.
type RevertError struct {
	Reason string // decoded Error(string) or the provider message
	Data   []byte // raw revert data, if returned
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

// RevertReasonOf extracts the revert reason from err, falling back to err's text.
func RevertReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var re *RevertError
	if errors.As(err, &re) {
		return re.Reason
	}
	return err.Error()
}
