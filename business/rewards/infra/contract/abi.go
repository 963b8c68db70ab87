// Package contract provides the ABI binding for the rewards contract.
package contract

// rewardsABI declares the distribution call and the optional status views.
const rewardsABI = `[
	{"type":"function","name":"distributeDailyRewards","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"isActive","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
	{"type":"function","name":"lastDistributionTime","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"paused","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"canDistribute","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"getRewardsPool","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"totalRewards","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"rewardsPerDay","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}
]`

const (
	methodDistribute       = "distributeDailyRewards"
	methodIsActive         = "isActive"
	methodOwner            = "owner"
	methodLastDistribution = "lastDistributionTime"
	methodPaused           = "paused"
	methodCanDistribute    = "canDistribute"
	methodRewardsPool      = "getRewardsPool"
	methodTotalRewards     = "totalRewards"
	methodRewardsPerDay    = "rewardsPerDay"
)
