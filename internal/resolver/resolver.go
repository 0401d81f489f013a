package resolver

import (
	"context"
	"fmt"
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakeLedger/internal/metrics"
)

// Caller is the read-only contract call primitive.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Resolver reads usersData across the historical return shapes of one
// deployment family. It never returns an error: failures degrade to a zero
// snapshot.
type Resolver struct {
	caller  Caller
	family  Family
	logger  *zap.Logger
	metrics *metrics.LedgerMetrics
}

func New(caller Caller, family Family, logger *zap.Logger, m *metrics.LedgerMetrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{caller: caller, family: family, logger: logger, metrics: m}
}

func (r *Resolver) Family() Family {
	return r.family
}

var revertedRe = regexp.MustCompile(`execution reverted`)

func isExecutionRevertedError(err error) bool {
	return revertedRe.MatchString(err.Error())
}

// UsersData returns the snapshot of user in poolID on contract at block.
// A zero block reads the latest state. At most one usersData call is made;
// a failed call is final.
func (r *Resolver) UsersData(ctx context.Context, contract, user common.Address, poolID *big.Int, block uint64) UsersData {
	if r.caller == nil {
		r.metrics.ObserveResolver(r.family.Name, "unavailable")
		return ZeroUsersData()
	}
	var blockNumber *big.Int
	if block > 0 {
		blockNumber = new(big.Int).SetUint64(block)
	}

	version := r.version(ctx, contract, blockNumber)
	plan := r.family.plan(version)
	if len(plan) == 0 {
		r.logger.Warn("no usersData schema for version",
			zap.String("family", r.family.Name),
			zap.String("contract", contract.Hex()),
			zap.Uint64("version", version),
		)
		r.metrics.ObserveResolver(r.family.Name, "no_schema")
		return ZeroUsersData()
	}

	out, err := r.call(ctx, contract, user, poolID, blockNumber, plan[0].Schema)
	if err != nil {
		fields := []zap.Field{
			zap.String("family", r.family.Name),
			zap.String("contract", contract.Hex()),
			zap.String("user", user.Hex()),
			zap.Uint64("version", version),
			zap.Uint64("block", block),
			zap.Error(err),
		}
		result := "failed"
		if isExecutionRevertedError(err) {
			result = "reverted"
			r.logger.Debug("usersData reverted", fields...)
		} else {
			r.logger.Warn("usersData call failed", fields...)
		}
		r.metrics.ObserveResolver(r.family.Name, result)
		return ZeroUsersData()
	}

	// Every schema shares the selector and arguments, so an older shape is
	// tried against the bytes already returned.
	for i, entry := range plan {
		data, err := entry.Schema.Decode(out)
		if err == nil {
			result := "ok"
			if i > 0 {
				result = "fallback"
			}
			r.metrics.ObserveResolver(r.family.Name, result)
			return data
		}
		r.logger.Debug("usersData does not match schema",
			zap.String("family", r.family.Name),
			zap.String("contract", contract.Hex()),
			zap.String("schema", entry.Label),
			zap.Uint64("version", version),
			zap.Int("bytes", len(out)),
			zap.Error(err),
		)
	}

	r.metrics.ObserveResolver(r.family.Name, "undecodable")
	return ZeroUsersData()
}

func (r *Resolver) version(ctx context.Context, contract common.Address, blockNumber *big.Int) uint64 {
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: versionMethod.ID}, blockNumber)
	if err != nil {
		r.logger.Debug("version call failed, using default",
			zap.String("contract", contract.Hex()),
			zap.Uint64("default", r.family.DefaultVersion),
			zap.Error(err),
		)
		return r.family.DefaultVersion
	}
	values, err := versionMethod.Outputs.Unpack(out)
	if err != nil || len(values) != 1 {
		return r.family.DefaultVersion
	}
	v, ok := values[0].(*big.Int)
	if !ok || !v.IsUint64() {
		return r.family.DefaultVersion
	}
	return v.Uint64()
}

// call issues the single usersData eth_call of one enrichment.
func (r *Resolver) call(ctx context.Context, contract, user common.Address, poolID, blockNumber *big.Int, schema Schema) ([]byte, error) {
	input, err := schema.Pack(user, poolID)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", schema.Name, err)
	}
	return r.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, blockNumber)
}
