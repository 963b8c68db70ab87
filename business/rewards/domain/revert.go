package domain

import "strings"

// RevertReason is a known category of contract rejection.
type RevertReason int

const (
	RevertUnclassified RevertReason = iota
	RevertNotOwner
	RevertPaused
	RevertTooEarly
	RevertInsufficientBalance
	RevertNotActive
)

func (r RevertReason) String() string {
	switch r {
	case RevertNotOwner:
		return "only the contract owner can call this function"
	case RevertPaused:
		return "contract is paused"
	case RevertTooEarly:
		return "distribution interval has not elapsed, try again later"
	case RevertInsufficientBalance:
		return "insufficient balance"
	case RevertNotActive:
		return "contract is not active"
	default:
		return "unclassified revert"
	}
}

// Label returns a short identifier for metrics.
func (r RevertReason) Label() string {
	switch r {
	case RevertNotOwner:
		return "not_owner"
	case RevertPaused:
		return "paused"
	case RevertTooEarly:
		return "too_early"
	case RevertInsufficientBalance:
		return "insufficient_balance"
	case RevertNotActive:
		return "not_active"
	default:
		return "unclassified"
	}
}

// Checked in order; the first match wins.
var revertPatterns = []struct {
	reason  RevertReason
	needles []string
}{
	{RevertNotOwner, []string{"caller is not the owner", "ownable", "only owner"}},
	{RevertPaused, []string{"pausable: paused", "paused"}},
	{RevertTooEarly, []string{"too early", "too soon", "not yet", "interval"}},
	{RevertInsufficientBalance, []string{"insufficient", "exceeds balance"}},
	{RevertNotActive, []string{"not active", "inactive"}},
}

// ClassifyRevert maps raw provider text to a known reason. Matching is
// case-insensitive. Unknown text returns (RevertUnclassified, false).
func ClassifyRevert(raw string) (RevertReason, bool) {
	lower := strings.ToLower(raw)
	for _, p := range revertPatterns {
		for _, n := range p.needles {
			if strings.Contains(lower, n) {
				return p.reason, true
			}
		}
	}
	return RevertUnclassified, false
}
