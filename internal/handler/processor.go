package handler

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakeLedger/internal/ledger"
	"stakeLedger/internal/metrics"
	"stakeLedger/internal/model"
	"stakeLedger/internal/resolver"
	"stakeLedger/internal/storage"
)

// UsersDataResolver supplies the enrichment snapshot for a user.
type UsersDataResolver interface {
	UsersData(ctx context.Context, contract, user common.Address, poolID *big.Int, block uint64) resolver.UsersData
}

// policy captures the per-family differences in how events are recorded.
type policy struct {
	// scopedUsers keys users by address, deposit pool and reward pool and
	// tracks stake per deposit-pool contract.
	scopedUsers bool
	// userSnapshots records a UserInteraction per transaction.
	userSnapshots bool
}

func policyFor(family string) (policy, error) {
	switch family {
	case resolver.FamilyDistribution:
		return policy{scopedUsers: false, userSnapshots: true}, nil
	case resolver.FamilyDepositPool:
		return policy{scopedUsers: true, userSnapshots: false}, nil
	default:
		return policy{}, fmt.Errorf("unknown contract family %q", family)
	}
}

// Processor applies events to the ledger one at a time.
type Processor struct {
	kv       storage.KV
	policy   policy
	resolver UsersDataResolver
	logger   *zap.Logger
	metrics  *metrics.LedgerMetrics
}

// NewProcessor builds a processor for one contract family. A nil resolver
// enriches every interaction with zero values.
func NewProcessor(kv storage.KV, family string, res UsersDataResolver, logger *zap.Logger, m *metrics.LedgerMetrics) (*Processor, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store is nil")
	}
	pol, err := policyFor(family)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{kv: kv, policy: pol, resolver: res, logger: logger, metrics: m}, nil
}

// Apply applies one event in its own session. Logs already applied are
// skipped and reported as false.
func (p *Processor) Apply(ctx context.Context, ev model.Event) (bool, error) {
	meta := ev.Meta()
	s := ledger.NewSession(p.kv)

	done, err := s.Applied(ctx, meta.TxHash, meta.LogIndex)
	if err != nil {
		return false, fmt.Errorf("check applied: %w", err)
	}
	if done {
		p.metrics.ObserveSkipped(ev.Name())
		p.logger.Debug("event already applied",
			zap.String("event", ev.Name()),
			zap.String("tx_hash", meta.TxHash.Hex()),
			zap.Uint32("log_index", meta.LogIndex),
		)
		return false, nil
	}

	if err := p.dispatch(ctx, s, ev); err != nil {
		s.Discard()
		p.metrics.ObserveFailed(ev.Name())
		return false, fmt.Errorf("apply %s %s#%d: %w", ev.Name(), meta.TxHash.Hex(), meta.LogIndex, err)
	}
	if err := s.MarkApplied(meta.TxHash, meta.LogIndex, meta.BlockNumber); err != nil {
		return false, err
	}
	if err := s.Commit(ctx); err != nil {
		p.metrics.ObserveFailed(ev.Name())
		return false, err
	}
	p.metrics.ObserveApplied(ev.Name())
	return true, nil
}

func (p *Processor) dispatch(ctx context.Context, s *ledger.Session, ev model.Event) error {
	switch e := ev.(type) {
	case model.PoolCreated:
		return p.onPoolCreated(ctx, s, e)
	case model.PoolEdited:
		return p.onPoolEdited(ctx, s, e)
	case model.UserStaked:
		return p.onStakeChange(ctx, s, e.EventMeta, e.PoolID, e.User, e.Amount, model.InteractionStake)
	case model.UserWithdrawn:
		return p.onStakeChange(ctx, s, e.EventMeta, e.PoolID, e.User, e.Amount, model.InteractionWithdraw)
	case model.UserClaimed:
		return p.onClaimed(ctx, s, e)
	case model.UserClaimLocked:
		return p.onClaimLocked(ctx, s, e)
	case model.UserReferred:
		return p.onReferred(ctx, s, e)
	case model.ReferrerClaimed:
		return p.onReferrerClaimed(ctx, s, e)
	case model.AdminChanged, model.BeaconUpgraded, model.Initialized,
		model.OwnershipTransferred, model.Upgraded, model.OverplusBridged:
		return p.onAudit(ctx, s, e)
	default:
		return fmt.Errorf("unhandled event type %T", ev)
	}
}

func (p *Processor) usersData(ctx context.Context, meta model.EventMeta, user common.Address, poolID *big.Int) resolver.UsersData {
	if p.resolver == nil {
		return resolver.ZeroUsersData()
	}
	return p.resolver.UsersData(ctx, meta.Contract, user, poolID, meta.BlockNumber)
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
