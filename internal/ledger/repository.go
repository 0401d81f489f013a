package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stakeLedger/internal/keys"
	"stakeLedger/internal/model"
)

// Result wraps a loaded entity and whether this call created it.
type Result[T any] struct {
	Entity  *T
	Created bool
}

// Pool loads the pool with poolID, creating it with zero totals when absent.
func (s *Session) Pool(ctx context.Context, poolID *big.Int) (Result[model.Pool], error) {
	id := keys.Pool(poolID)
	p, ok, err := load[model.Pool](ctx, s, KindPool, id)
	if err != nil {
		return Result[model.Pool]{}, err
	}
	if ok {
		return Result[model.Pool]{Entity: p}, nil
	}
	p = &model.Pool{
		ID:          id,
		PoolID:      bigOrZero(poolID),
		TotalStaked: new(big.Int),
	}
	p.SetParams(model.PoolParams{})
	return Result[model.Pool]{Entity: p, Created: true}, nil
}

func (s *Session) SavePool(p *model.Pool) error {
	return save(s, KindPool, p.ID, p)
}

// FindPool loads a pool without creating it.
func (s *Session) FindPool(ctx context.Context, poolID *big.Int) (*model.Pool, bool, error) {
	return load[model.Pool](ctx, s, KindPool, keys.Pool(poolID))
}

// User loads the user keyed by seed.ID, creating it from seed when absent.
func (s *Session) User(ctx context.Context, seed model.User) (Result[model.User], error) {
	u, ok, err := load[model.User](ctx, s, KindUser, seed.ID)
	if err != nil {
		return Result[model.User]{}, err
	}
	if ok {
		return Result[model.User]{Entity: u}, nil
	}
	u = &seed
	u.TotalClaimed = new(big.Int)
	u.TotalStaked = new(big.Int)
	return Result[model.User]{Entity: u, Created: true}, nil
}

func (s *Session) SaveUser(u *model.User) error {
	return save(s, KindUser, u.ID, u)
}

func (s *Session) FindUser(ctx context.Context, id []byte) (*model.User, bool, error) {
	return load[model.User](ctx, s, KindUser, id)
}

// JoinPool loads the user's position in pool, creating it when absent. The
// first creation increments pool.TotalUsers; the caller saves the pool.
func (s *Session) JoinPool(ctx context.Context, user *model.User, pool *model.Pool) (Result[model.UserInPool], error) {
	id := keys.UserInPool(user.ID, pool.ID)
	pos, ok, err := load[model.UserInPool](ctx, s, KindUserInPool, id)
	if err != nil {
		return Result[model.UserInPool]{}, err
	}
	if ok {
		return Result[model.UserInPool]{Entity: pos}, nil
	}
	pos = &model.UserInPool{
		ID:      id,
		User:    user.ID,
		Pool:    pool.ID,
		Staked:  new(big.Int),
		Claimed: new(big.Int),
	}
	pool.TotalUsers++
	return Result[model.UserInPool]{Entity: pos, Created: true}, nil
}

func (s *Session) SaveUserInPool(pos *model.UserInPool) error {
	return save(s, KindUserInPool, pos.ID, pos)
}

func (s *Session) FindUserInPool(ctx context.Context, id []byte) (*model.UserInPool, bool, error) {
	return load[model.UserInPool](ctx, s, KindUserInPool, id)
}

// DepositPool loads the stake tracker of one deposit-pool contract.
func (s *Session) DepositPool(ctx context.Context, rewardPoolID *big.Int, depositPool common.Address) (Result[model.DepositPool], error) {
	id := keys.DepositPool(rewardPoolID, depositPool)
	dp, ok, err := load[model.DepositPool](ctx, s, KindDepositPool, id)
	if err != nil {
		return Result[model.DepositPool]{}, err
	}
	if ok {
		return Result[model.DepositPool]{Entity: dp}, nil
	}
	dp = &model.DepositPool{
		ID:           id,
		RewardPoolID: bigOrZero(rewardPoolID),
		DepositPool:  depositPool,
		TotalStaked:  new(big.Int),
	}
	return Result[model.DepositPool]{Entity: dp, Created: true}, nil
}

func (s *Session) SaveDepositPool(dp *model.DepositPool) error {
	return save(s, KindDepositPool, dp.ID, dp)
}

// Referrer loads the referrer keyed by seed.ID, creating it from seed.
func (s *Session) Referrer(ctx context.Context, seed model.Referrer) (Result[model.Referrer], error) {
	r, ok, err := load[model.Referrer](ctx, s, KindReferrer, seed.ID)
	if err != nil {
		return Result[model.Referrer]{}, err
	}
	if ok {
		return Result[model.Referrer]{Entity: r}, nil
	}
	r = &seed
	r.PoolID = bigOrZero(seed.PoolID)
	r.TotalClaimed = new(big.Int)
	return Result[model.Referrer]{Entity: r, Created: true}, nil
}

func (s *Session) SaveReferrer(r *model.Referrer) error {
	return save(s, KindReferrer, r.ID, r)
}

func (s *Session) FindReferrer(ctx context.Context, id []byte) (*model.Referrer, bool, error) {
	return load[model.Referrer](ctx, s, KindReferrer, id)
}

// Referral loads the link keyed by seed.ID, creating it from seed.
func (s *Session) Referral(ctx context.Context, seed model.Referral) (Result[model.Referral], error) {
	r, ok, err := load[model.Referral](ctx, s, KindReferral, seed.ID)
	if err != nil {
		return Result[model.Referral]{}, err
	}
	if ok {
		return Result[model.Referral]{Entity: r}, nil
	}
	r = &seed
	r.PoolID = bigOrZero(seed.PoolID)
	r.Amount = new(big.Int)
	return Result[model.Referral]{Entity: r, Created: true}, nil
}

func (s *Session) SaveReferral(r *model.Referral) error {
	return save(s, KindReferral, r.ID, r)
}

func (s *Session) FindReferral(ctx context.Context, id []byte) (*model.Referral, bool, error) {
	return load[model.Referral](ctx, s, KindReferral, id)
}

// AppendInteraction creates the next pool interaction of txHash. The record
// id is txHash plus the current counter value; when a record with that id
// already exists it is returned untouched and the counter is not advanced.
func (s *Session) AppendInteraction(ctx context.Context, txHash common.Hash, build func(id []byte) model.PoolInteraction) (Result[model.PoolInteraction], error) {
	counter, err := s.Counter(ctx, txHash)
	if err != nil {
		return Result[model.PoolInteraction]{}, err
	}
	id := keys.Interaction(txHash, counter.Count)
	existing, ok, err := load[model.PoolInteraction](ctx, s, KindPoolInteraction, id)
	if err != nil {
		return Result[model.PoolInteraction]{}, err
	}
	if ok {
		return Result[model.PoolInteraction]{Entity: existing}, nil
	}
	rec := build(id)
	rec.ID = id
	if err := save(s, KindPoolInteraction, id, &rec); err != nil {
		return Result[model.PoolInteraction]{}, err
	}
	if err := s.Advance(counter); err != nil {
		return Result[model.PoolInteraction]{}, err
	}
	return Result[model.PoolInteraction]{Entity: &rec, Created: true}, nil
}

func (s *Session) FindPoolInteraction(ctx context.Context, id []byte) (*model.PoolInteraction, bool, error) {
	return load[model.PoolInteraction](ctx, s, KindPoolInteraction, id)
}

// RecordUserInteraction stores the snapshot unless one already exists for
// the same transaction.
func (s *Session) RecordUserInteraction(ctx context.Context, ui model.UserInteraction) (Result[model.UserInteraction], error) {
	existing, ok, err := load[model.UserInteraction](ctx, s, KindUserInteraction, ui.ID)
	if err != nil {
		return Result[model.UserInteraction]{}, err
	}
	if ok {
		return Result[model.UserInteraction]{Entity: existing}, nil
	}
	if err := save(s, KindUserInteraction, ui.ID, &ui); err != nil {
		return Result[model.UserInteraction]{}, err
	}
	return Result[model.UserInteraction]{Entity: &ui, Created: true}, nil
}

func (s *Session) FindUserInteraction(ctx context.Context, txHash common.Hash) (*model.UserInteraction, bool, error) {
	return load[model.UserInteraction](ctx, s, KindUserInteraction, keys.Transaction(txHash))
}

// AppendAudit stores an audit record unless its id is already present.
func (s *Session) AppendAudit(ctx context.Context, rec model.AuditRecord) (Result[model.AuditRecord], error) {
	existing, ok, err := load[model.AuditRecord](ctx, s, KindAudit, rec.ID)
	if err != nil {
		return Result[model.AuditRecord]{}, err
	}
	if ok {
		return Result[model.AuditRecord]{Entity: existing}, nil
	}
	if err := save(s, KindAudit, rec.ID, &rec); err != nil {
		return Result[model.AuditRecord]{}, err
	}
	return Result[model.AuditRecord]{Entity: &rec, Created: true}, nil
}

func (s *Session) FindAudit(ctx context.Context, txHash common.Hash, logIndex uint32) (*model.AuditRecord, bool, error) {
	return load[model.AuditRecord](ctx, s, KindAudit, keys.LogEntry(txHash, logIndex))
}

type appliedLog struct {
	BlockNumber uint64 `json:"block_number"`
}

// Applied reports whether the log at (txHash, logIndex) was already applied.
func (s *Session) Applied(ctx context.Context, txHash common.Hash, logIndex uint32) (bool, error) {
	_, ok, err := s.get(ctx, KindAppliedLog, keys.LogEntry(txHash, logIndex))
	return ok, err
}

// MarkApplied stages the replay marker for a log.
func (s *Session) MarkApplied(txHash common.Hash, logIndex uint32, blockNumber uint64) error {
	return save(s, KindAppliedLog, keys.LogEntry(txHash, logIndex), &appliedLog{BlockNumber: blockNumber})
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
