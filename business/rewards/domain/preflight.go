package domain

import (
	"fmt"
	"strings"
	"time"

	chain "github.com/fd1az/rewards-distributor/business/chain/domain"
)

// MinDistributionInterval is the minimum time between two distributions.
const MinDistributionInterval = 23 * time.Hour

// PreflightMode selects how pre-flight findings are applied.
type PreflightMode string

const (
	PreflightAdvisory PreflightMode = "advisory"
	PreflightEnforce  PreflightMode = "enforce"
)

// ParsePreflightMode parses a mode name; empty means advisory.
func ParsePreflightMode(s string) (PreflightMode, error) {
	switch PreflightMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PreflightAdvisory:
		return PreflightAdvisory, nil
	case PreflightEnforce:
		return PreflightEnforce, nil
	default:
		return "", fmt.Errorf("unknown preflight mode %q", s)
	}
}

// PreflightIssue is one failed pre-flight condition.
type PreflightIssue struct {
	Condition string
	Detail    string
}

func (i PreflightIssue) String() string {
	return i.Condition + ": " + i.Detail
}

// EvaluatePreflight returns the failed conditions of status. Conditions whose
// read failed are skipped. The interval check only applies to production networks.
func EvaluatePreflight(status ContractStatus, n chain.Network, now time.Time) []PreflightIssue {
	var issues []PreflightIssue

	if status.Active != nil && !*status.Active {
		issues = append(issues, PreflightIssue{"active", "contract is not active"})
	}
	if status.Paused != nil && *status.Paused {
		issues = append(issues, PreflightIssue{"paused", "contract is paused"})
	}
	if status.CanDistribute != nil && !*status.CanDistribute {
		issues = append(issues, PreflightIssue{"can_distribute", "contract reports distribution is not allowed now"})
	}
	if status.RewardsPool != nil && status.RewardsPool.Sign() == 0 {
		issues = append(issues, PreflightIssue{"rewards_pool", "rewards pool is empty"})
	}

	if !n.IsLocalDev() {
		if remaining, ok := IntervalRemaining(status, now); ok && remaining > 0 {
			issues = append(issues, PreflightIssue{"interval",
				fmt.Sprintf("last distribution less than 23h ago, %d hours remaining", HoursCeil(remaining))})
		}
	}

	return issues
}

// IntervalRemaining returns how long until the minimum interval has elapsed
// since the last distribution. ok is false when the last time is unknown or zero.
func IntervalRemaining(status ContractStatus, now time.Time) (time.Duration, bool) {
	last, ok := status.LastDistributionTime()
	if !ok || last.Unix() == 0 {
		return 0, false
	}
	elapsed := now.Sub(last)
	if elapsed >= MinDistributionInterval {
		return 0, true
	}
	return MinDistributionInterval - elapsed, true
}

// HoursCeil rounds d up to whole hours.
func HoursCeil(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Hour - 1) / time.Hour)
}
