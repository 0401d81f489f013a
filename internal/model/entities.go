package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Pool is a configured staking program.
type Pool struct {
	ID                           hexutil.Bytes `json:"id"`
	PoolID                       *big.Int      `json:"pool_id"`
	PayoutStart                  *big.Int      `json:"payout_start"`
	DecreaseInterval             *big.Int      `json:"decrease_interval"`
	WithdrawLockPeriod           *big.Int      `json:"withdraw_lock_period"`
	ClaimLockPeriod              *big.Int      `json:"claim_lock_period"`
	WithdrawLockPeriodAfterStake *big.Int      `json:"withdraw_lock_period_after_stake"`
	InitialReward                *big.Int      `json:"initial_reward"`
	RewardDecrease               *big.Int      `json:"reward_decrease"`
	MinimalStake                 *big.Int      `json:"minimal_stake"`
	IsPublic                     bool          `json:"is_public"`
	TotalUsers                   uint64        `json:"total_users"`
	TotalStaked                  *big.Int      `json:"total_staked"`
}

// SetParams overwrites every editable attribute of the pool.
func (p *Pool) SetParams(params PoolParams) {
	p.PayoutStart = valueOrZero(params.PayoutStart)
	p.DecreaseInterval = valueOrZero(params.DecreaseInterval)
	p.WithdrawLockPeriod = valueOrZero(params.WithdrawLockPeriod)
	p.ClaimLockPeriod = valueOrZero(params.ClaimLockPeriod)
	p.WithdrawLockPeriodAfterStake = valueOrZero(params.WithdrawLockPeriodAfterStake)
	p.InitialReward = valueOrZero(params.InitialReward)
	p.RewardDecrease = valueOrZero(params.RewardDecrease)
	p.MinimalStake = valueOrZero(params.MinimalStake)
	p.IsPublic = params.IsPublic
}

// User is a staker. RewardPoolID and DepositPool are only set in
// deployments where users are scoped per deposit-pool contract.
type User struct {
	ID           hexutil.Bytes  `json:"id"`
	Address      common.Address `json:"address"`
	RewardPoolID *big.Int       `json:"reward_pool_id,omitempty"`
	DepositPool  common.Address `json:"deposit_pool"`
	TotalClaimed *big.Int       `json:"total_claimed"`
	TotalStaked  *big.Int       `json:"total_staked"`
}

// UserInPool is a user's position in one pool.
type UserInPool struct {
	ID      hexutil.Bytes `json:"id"`
	User    hexutil.Bytes `json:"user"`
	Pool    hexutil.Bytes `json:"pool"`
	Staked  *big.Int      `json:"staked"`
	Claimed *big.Int      `json:"claimed"`
}

// DepositPool tracks the stake held by one deposit-pool contract.
type DepositPool struct {
	ID           hexutil.Bytes  `json:"id"`
	RewardPoolID *big.Int       `json:"reward_pool_id"`
	DepositPool  common.Address `json:"deposit_pool"`
	TotalStaked  *big.Int       `json:"total_staked"`
}

type Referrer struct {
	ID           hexutil.Bytes  `json:"id"`
	Address      common.Address `json:"address"`
	PoolID       *big.Int       `json:"pool_id"`
	TotalClaimed *big.Int       `json:"total_claimed"`
}

// Referral links a referred user to a referrer. Amount holds the latest
// referred amount only.
type Referral struct {
	ID              hexutil.Bytes  `json:"id"`
	Referral        hexutil.Bytes  `json:"referral"`
	Referrer        hexutil.Bytes  `json:"referrer"`
	ReferralAddress common.Address `json:"referral_address"`
	ReferrerAddress common.Address `json:"referrer_address"`
	PoolID          *big.Int       `json:"pool_id"`
	Amount          *big.Int       `json:"amount"`
	Timestamp       uint64         `json:"timestamp"`
}

type InteractionType string

const (
	InteractionStake    InteractionType = "STAKE"
	InteractionWithdraw InteractionType = "WITHDRAW"
	InteractionClaim    InteractionType = "CLAIM"
)

// PoolInteraction is an immutable record of one stake, withdraw or claim.
type PoolInteraction struct {
	ID          hexutil.Bytes   `json:"id"`
	Hash        common.Hash     `json:"hash"`
	Type        InteractionType `json:"type"`
	IsStake     bool            `json:"is_stake"`
	Amount      *big.Int        `json:"amount"`
	TotalStaked *big.Int        `json:"total_staked"`
	Timestamp   uint64          `json:"timestamp"`
	BlockNumber uint64          `json:"block_number"`
	User        hexutil.Bytes   `json:"user"`
	Pool        hexutil.Bytes   `json:"pool"`
	UserInPool  hexutil.Bytes   `json:"user_in_pool"`
	Rate        *big.Int        `json:"rate"`
}

// UserInteraction is the enrichment snapshot taken for a user in a transaction.
type UserInteraction struct {
	ID             hexutil.Bytes  `json:"id"`
	Timestamp      uint64         `json:"timestamp"`
	PoolID         *big.Int       `json:"pool_id"`
	User           common.Address `json:"user"`
	Rate           *big.Int       `json:"rate"`
	Deposited      *big.Int       `json:"deposited"`
	ClaimedRewards *big.Int       `json:"claimed_rewards"`
	PendingRewards *big.Int       `json:"pending_rewards"`
}

type InteractionCount struct {
	ID    hexutil.Bytes `json:"id"`
	Count uint32        `json:"count"`
}

// AuditRecord is an append-only record of a proxy or ownership event.
type AuditRecord struct {
	ID              hexutil.Bytes             `json:"id"`
	Kind            string                    `json:"kind"`
	Addresses       map[string]common.Address `json:"addresses,omitempty"`
	Version         uint8                     `json:"version,omitempty"`
	Amount          *big.Int                  `json:"amount,omitempty"`
	UniqueID        hexutil.Bytes             `json:"unique_id,omitempty"`
	DepositPool     common.Address            `json:"deposit_pool"`
	BlockNumber     uint64                    `json:"block_number"`
	BlockTimestamp  uint64                    `json:"block_timestamp"`
	TransactionHash common.Hash               `json:"transaction_hash"`
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
