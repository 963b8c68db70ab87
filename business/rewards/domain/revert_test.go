package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fd1az/rewards-distributor/business/rewards/domain"
)

func TestClassifyRevert(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.RevertReason
		ok   bool
	}{
		{raw: "execution reverted: Ownable: caller is not the owner", want: domain.RevertNotOwner, ok: true},
		{raw: "OwnableUnauthorizedAccount(0xabc)", want: domain.RevertNotOwner, ok: true},
		{raw: "revert: only owner", want: domain.RevertNotOwner, ok: true},
		{raw: "execution reverted: Pausable: paused", want: domain.RevertPaused, ok: true},
		{raw: "EnforcedPause: contract PAUSED", want: domain.RevertPaused, ok: true},
		{raw: "execution reverted: Too early to distribute", want: domain.RevertTooEarly, ok: true},
		{raw: "too soon", want: domain.RevertTooEarly, ok: true},
		{raw: "Distribution interval not reached", want: domain.RevertTooEarly, ok: true},
		{raw: "Not yet", want: domain.RevertTooEarly, ok: true},
		{raw: "Insufficient rewards pool", want: domain.RevertInsufficientBalance, ok: true},
		{raw: "ERC20: transfer amount exceeds balance", want: domain.RevertInsufficientBalance, ok: true},
		{raw: "execution reverted: Not active", want: domain.RevertNotActive, ok: true},
		{raw: "contract inactive", want: domain.RevertNotActive, ok: true},
		{raw: "execution reverted", want: domain.RevertUnclassified, ok: false},
		{raw: "", want: domain.RevertUnclassified, ok: false},
		{raw: "nonce too low", want: domain.RevertUnclassified, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := domain.ClassifyRevert(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestRevertReason_Strings(t *testing.T) {
	reasons := []domain.RevertReason{
		domain.RevertNotOwner, domain.RevertPaused, domain.RevertTooEarly,
		domain.RevertInsufficientBalance, domain.RevertNotActive,
	}
	seen := map[string]bool{}
	for _, r := range reasons {
		assert.NotEqual(t, domain.RevertUnclassified.String(), r.String())
		assert.False(t, seen[r.Label()], "duplicate label %s", r.Label())
		seen[r.Label()] = true
	}
}
