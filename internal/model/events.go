package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event names as they appear in the staking contract ABI.
const (
	EventPoolCreated          = "PoolCreated"
	EventPoolEdited           = "PoolEdited"
	EventUserStaked           = "UserStaked"
	EventUserWithdrawn        = "UserWithdrawn"
	EventUserClaimed          = "UserClaimed"
	EventUserClaimLocked      = "UserClaimLocked"
	EventUserReferred         = "UserReferred"
	EventReferrerClaimed      = "ReferrerClaimed"
	EventOverplusBridged      = "OverplusBridged"
	EventAdminChanged         = "AdminChanged"
	EventBeaconUpgraded       = "BeaconUpgraded"
	EventInitialized          = "Initialized"
	EventOwnershipTransferred = "OwnershipTransferred"
	EventUpgraded             = "Upgraded"
)

// Event is a decoded staking contract event. The set of implementations is
// closed: only types in this package satisfy it.
type Event interface {
	Meta() EventMeta
	Name() string
	sealed()
}

// EventMeta carries the block and transaction context of a log.
type EventMeta struct {
	Contract    common.Address
	TxHash      common.Hash
	TxTo        *common.Address
	LogIndex    uint32
	BlockNumber uint64
	Timestamp   uint64
}

func (m EventMeta) Meta() EventMeta { return m }

func (EventMeta) sealed() {}

// Recipient returns the transaction recipient, or the zero address when the
// delivery layer did not supply one.
func (m EventMeta) Recipient() common.Address {
	if m.TxTo == nil {
		return common.Address{}
	}
	return *m.TxTo
}

// PoolParams is the pool configuration tuple of PoolCreated and PoolEdited.
type PoolParams struct {
	PayoutStart                  *big.Int
	DecreaseInterval             *big.Int
	WithdrawLockPeriod           *big.Int
	ClaimLockPeriod              *big.Int
	WithdrawLockPeriodAfterStake *big.Int
	InitialReward                *big.Int
	RewardDecrease               *big.Int
	MinimalStake                 *big.Int
	IsPublic                     bool
}

type PoolCreated struct {
	EventMeta
	PoolID *big.Int
	Pool   PoolParams
}

type PoolEdited struct {
	EventMeta
	PoolID *big.Int
	Pool   PoolParams
}

type UserStaked struct {
	EventMeta
	PoolID *big.Int
	User   common.Address
	Amount *big.Int
}

type UserWithdrawn struct {
	EventMeta
	PoolID *big.Int
	User   common.Address
	Amount *big.Int
}

type UserClaimed struct {
	EventMeta
	PoolID   *big.Int
	User     common.Address
	Receiver common.Address
	Amount   *big.Int
}

type UserClaimLocked struct {
	EventMeta
	PoolID         *big.Int
	User           common.Address
	ClaimLockStart *big.Int
	ClaimLockEnd   *big.Int
}

// UserReferred reports that User staked Amount under Referrer's referral.
type UserReferred struct {
	EventMeta
	PoolID   *big.Int
	User     common.Address
	Referrer common.Address
	Amount   *big.Int
}

type ReferrerClaimed struct {
	EventMeta
	PoolID   *big.Int
	User     common.Address
	Receiver common.Address
	Amount   *big.Int
}

type OverplusBridged struct {
	EventMeta
	Amount   *big.Int
	UniqueID []byte
}

type AdminChanged struct {
	EventMeta
	PreviousAdmin common.Address
	NewAdmin      common.Address
}

type BeaconUpgraded struct {
	EventMeta
	Beacon common.Address
}

type Initialized struct {
	EventMeta
	Version uint8
}

type OwnershipTransferred struct {
	EventMeta
	PreviousOwner common.Address
	NewOwner      common.Address
}

type Upgraded struct {
	EventMeta
	Implementation common.Address
}

func (PoolCreated) Name() string          { return EventPoolCreated }
func (PoolEdited) Name() string           { return EventPoolEdited }
func (UserStaked) Name() string           { return EventUserStaked }
func (UserWithdrawn) Name() string        { return EventUserWithdrawn }
func (UserClaimed) Name() string          { return EventUserClaimed }
func (UserClaimLocked) Name() string      { return EventUserClaimLocked }
func (UserReferred) Name() string         { return EventUserReferred }
func (ReferrerClaimed) Name() string      { return EventReferrerClaimed }
func (OverplusBridged) Name() string      { return EventOverplusBridged }
func (AdminChanged) Name() string         { return EventAdminChanged }
func (BeaconUpgraded) Name() string       { return EventBeaconUpgraded }
func (Initialized) Name() string          { return EventInitialized }
func (OwnershipTransferred) Name() string { return EventOwnershipTransferred }
func (Upgraded) Name() string             { return EventUpgraded }
