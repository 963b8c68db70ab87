package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raulk/clock"
	"go.uber.org/multierr"

	"github.com/fd1az/rewards-distributor/business/rewards/domain"
	"github.com/fd1az/rewards-distributor/internal/apm"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/asset"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

// CheckStatus is the verdict of a single diagnostic check.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckFail CheckStatus = "fail"
	CheckWarn CheckStatus = "warn"
	CheckInfo CheckStatus = "info"
)

// Check is one line of a diagnostics report.
type Check struct {
	Name   string
	Status CheckStatus
	Detail string
}

// Report is an ordered list of checks. Err aggregates every error met while
// collecting them; it never aborts the pass.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Checks      []Check
	Err         error
}

func (r *Report) add(name string, status CheckStatus, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
}

func (r *Report) fail(name string, err error) {
	r.add(name, CheckFail, "%v", err)
	r.Err = multierr.Append(r.Err, err)
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == CheckFail {
			return true
		}
	}
	return false
}

// Check returns the named check and whether it is present.
func (r *Report) Check(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// Diagnostics inspects the contract, signer and network without changing state.
type Diagnostics struct {
	gateway     *Gateway
	distributor *Distributor
	clock       clock.Clock
	logger      logger.LoggerInterface
	tracer      apm.Tracer
}

// NewDiagnostics creates a Diagnostics service.
func NewDiagnostics(distributor *Distributor, clk clock.Clock, log logger.LoggerInterface) *Diagnostics {
	return &Diagnostics{
		gateway:     distributor.Gateway(),
		distributor: distributor,
		clock:       clk,
		logger:      log,
		tracer:      apm.NewTracer(tracerName),
	}
}

// Diagnose runs every read-only check in order.
func (d *Diagnostics) Diagnose(ctx context.Context) *Report {
	ctx, span := d.tracer.StartSpanFromContext(ctx, "rewards.diagnose")
	defer span.End()

	r := &Report{Title: "Contract diagnostics", GeneratedAt: d.clock.Now()}
	g := d.gateway

	// Connectivity
	code, err := g.ContractCode(ctx)
	switch {
	case err != nil:
		r.fail("connectivity", err)
	case len(code) == 0:
		r.fail("connectivity", apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(fmt.Sprintf("no bytecode at %s", g.ContractAddress().Hex()))))
	default:
		r.add("connectivity", CheckPass, "contract %s has %d bytes of code", g.ContractAddress().Hex(), len(code))
	}

	// Network
	info, err := g.NetworkInfo(ctx)
	if err != nil {
		r.fail("network", err)
	} else {
		r.add("network", CheckInfo, "chain %d (%s), block %d, gas price %s",
			info.ChainID, g.Network().Name(), info.BlockNumber, asset.FormatGwei(info.GasPrice))
		if info.ChainID != g.Network().ChainID() {
			r.add("chain_id", CheckWarn, "node reports chain %d but %d is configured",
				info.ChainID, g.Network().ChainID())
		}
	}

	// Signer
	r.add("signer", CheckInfo, "%s", g.SignerAddress().Hex())
	bal, err := g.Balance(ctx)
	switch {
	case err != nil:
		r.fail("balance", err)
	case bal.Sign() == 0:
		r.add("balance", CheckWarn, "%s", asset.NewAmount(g.Network().NativeCoin(), bal).StringFixed(6))
	default:
		r.add("balance", CheckPass, "%s", asset.NewAmount(g.Network().NativeCoin(), bal).StringFixed(6))
	}

	// Contract status
	status := g.ContractStatus(ctx)
	d.statusChecks(r, status)

	// Dry run
	if err := g.Simulate(ctx); err != nil {
		r.fail("simulation", err)
	} else {
		r.add("simulation", CheckPass, "distributeDailyRewards() would succeed")
	}

	if r.Err != nil {
		span.NoticeError(r.Err)
		d.logger.Warn(ctx, "diagnostics found problems", "error", r.Err)
	} else {
		d.logger.Info(ctx, "diagnostics passed")
	}
	return r
}

func (d *Diagnostics) statusChecks(r *Report, s domain.ContractStatus) {
	if !s.Known() {
		r.add("status", CheckWarn, "no status views could be read")
	}

	boolCheck := func(name string, v *bool, good bool, goodText, badText string) {
		switch {
		case v == nil:
			r.add(name, CheckInfo, "unknown")
		case *v == good:
			r.add(name, CheckPass, "%s", goodText)
		default:
			r.add(name, CheckFail, "%s", badText)
		}
	}
	boolCheck("active", s.Active, true, "contract is active", "contract is not active")
	boolCheck("paused", s.Paused, false, "contract is not paused", "contract is paused")
	boolCheck("can_distribute", s.CanDistribute, true, "distribution allowed", "distribution not allowed now")

	// Permission
	if s.Owner == nil {
		r.add("permission", CheckInfo, "owner unknown")
	} else if *s.Owner == d.gateway.SignerAddress() {
		r.add("permission", CheckPass, "signer is the owner")
	} else {
		r.add("permission", CheckFail, "signer %s is not the owner %s",
			d.gateway.SignerAddress().Hex(), s.Owner.Hex())
	}

	// Timing
	last, known := s.LastDistributionTime()
	switch {
	case !known:
		r.add("timing", CheckInfo, "last distribution time unknown")
	case last.Unix() == 0:
		r.add("timing", CheckPass, "never distributed")
	default:
		remaining, _ := domain.IntervalRemaining(s, d.clock.Now())
		elapsed := d.clock.Now().Sub(last)
		if remaining > 0 {
			r.add("timing", CheckWarn, "last distribution %s ago, %d hours remaining",
				elapsed.Truncate(time.Minute), domain.HoursCeil(remaining))
		} else {
			r.add("timing", CheckPass, "last distribution %s ago", elapsed.Truncate(time.Minute))
		}
	}

	// Pool
	switch {
	case s.RewardsPool == nil:
		r.add("pool", CheckInfo, "rewards pool unknown")
	case s.RewardsPool.Sign() == 0:
		r.add("pool", CheckFail, "rewards pool is empty")
	case s.RewardsPerDay != nil && s.RewardsPool.Cmp(s.RewardsPerDay) < 0:
		r.add("pool", CheckWarn, "rewards pool %s is below the daily amount %s", s.RewardsPool, s.RewardsPerDay)
	default:
		r.add("pool", CheckPass, "rewards pool %s", s.RewardsPool)
	}

	if s.TotalRewards != nil {
		r.add("total_rewards", CheckInfo, "%s", s.TotalRewards)
	}
	if s.RewardsPerDay != nil {
		r.add("rewards_per_day", CheckInfo, "%s", s.RewardsPerDay)
	}
}

// ManualTrigger runs one distribution through the shared Distributor and
// reports the outcome.
func (d *Diagnostics) ManualTrigger(ctx context.Context) *Report {
	r := &Report{Title: "Manual distribution", GeneratedAt: d.clock.Now()}

	res, err := d.distributor.Run(ctx)
	if res == nil {
		r.fail("run", err)
		return r
	}

	if res.TxHash != (common.Hash{}) {
		r.add("tx_hash", CheckInfo, "%s", res.TxHash.Hex())
	}
	if res.Receipt != nil {
		r.add("receipt", CheckInfo, "block %d, gas used %d, status %d",
			res.Receipt.BlockNumber, res.Receipt.GasUsed, res.Receipt.Status)
	}
	if err != nil {
		r.fail(string(res.Outcome), err)
		return r
	}
	r.add(string(res.Outcome), CheckPass, "distribution confirmed in %s", res.FinishedAt.Sub(res.StartedAt))
	return r
}
