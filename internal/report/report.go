// Package report renders ledger entities for humans.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"stakeLedger/internal/keys"
	"stakeLedger/internal/ledger"
	"stakeLedger/internal/resolver"
	"stakeLedger/internal/storage"
)

// TokenDecimals is the precision of the staked and reward tokens.
const TokenDecimals = 18

var ErrNotFound = errors.New("entity not found")

// PoolReport is a pool with amounts in token units.
type PoolReport struct {
	PoolID                       string `json:"pool_id"`
	IsPublic                     bool   `json:"is_public"`
	PayoutStart                  string `json:"payout_start"`
	DecreaseInterval             string `json:"decrease_interval"`
	WithdrawLockPeriod           string `json:"withdraw_lock_period"`
	ClaimLockPeriod              string `json:"claim_lock_period"`
	WithdrawLockPeriodAfterStake string `json:"withdraw_lock_period_after_stake"`
	InitialReward                string `json:"initial_reward"`
	RewardDecrease               string `json:"reward_decrease"`
	MinimalStake                 string `json:"minimal_stake"`
	TotalUsers                   uint64 `json:"total_users"`
	TotalStaked                  string `json:"total_staked"`
}

// PositionReport is a user's totals and their position in one pool.
type PositionReport struct {
	User         string `json:"user"`
	PoolID       string `json:"pool_id"`
	DepositPool  string `json:"deposit_pool,omitempty"`
	Staked       string `json:"staked"`
	Claimed      string `json:"claimed"`
	TotalStaked  string `json:"user_total_staked"`
	TotalClaimed string `json:"user_total_claimed"`
}

// TokenAmount formats a raw 18-decimal amount.
func TokenAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -TokenDecimals).String()
}

func integer(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// Pool loads a pool by id.
func Pool(ctx context.Context, kv storage.KV, poolID *big.Int) (PoolReport, error) {
	p, ok, err := ledger.NewSession(kv).FindPool(ctx, poolID)
	if err != nil {
		return PoolReport{}, err
	}
	if !ok {
		return PoolReport{}, fmt.Errorf("pool %s: %w", poolID, ErrNotFound)
	}
	return PoolReport{
		PoolID:                       integer(p.PoolID),
		IsPublic:                     p.IsPublic,
		PayoutStart:                  integer(p.PayoutStart),
		DecreaseInterval:             integer(p.DecreaseInterval),
		WithdrawLockPeriod:           integer(p.WithdrawLockPeriod),
		ClaimLockPeriod:              integer(p.ClaimLockPeriod),
		WithdrawLockPeriodAfterStake: integer(p.WithdrawLockPeriodAfterStake),
		InitialReward:                TokenAmount(p.InitialReward),
		RewardDecrease:               TokenAmount(p.RewardDecrease),
		MinimalStake:                 TokenAmount(p.MinimalStake),
		TotalUsers:                   p.TotalUsers,
		TotalStaked:                  TokenAmount(p.TotalStaked),
	}, nil
}

// Position loads a user's position in a pool. In the deposit-pool family the
// user is scoped to depositPool.
func Position(ctx context.Context, kv storage.KV, family string, user common.Address, poolID *big.Int, depositPool common.Address) (PositionReport, error) {
	s := ledger.NewSession(kv)

	userKey := keys.User(user)
	if family == resolver.FamilyDepositPool {
		userKey = keys.ScopedUser(user, depositPool, poolID)
	}
	u, ok, err := s.FindUser(ctx, userKey)
	if err != nil {
		return PositionReport{}, err
	}
	if !ok {
		return PositionReport{}, fmt.Errorf("user %s: %w", user.Hex(), ErrNotFound)
	}

	pos, ok, err := s.FindUserInPool(ctx, keys.UserInPool(userKey, keys.Pool(poolID)))
	if err != nil {
		return PositionReport{}, err
	}
	if !ok {
		return PositionReport{}, fmt.Errorf("position of %s in pool %s: %w", user.Hex(), poolID, ErrNotFound)
	}

	out := PositionReport{
		User:         user.Hex(),
		PoolID:       poolID.String(),
		Staked:       TokenAmount(pos.Staked),
		Claimed:      TokenAmount(pos.Claimed),
		TotalStaked:  TokenAmount(u.TotalStaked),
		TotalClaimed: TokenAmount(u.TotalClaimed),
	}
	if family == resolver.FamilyDepositPool {
		out.DepositPool = depositPool.Hex()
	}
	return out, nil
}

// Write prints a report as indented JSON.
func Write(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
