package distribution

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"stakeLedger/internal/model"
)

// Decoder turns raw staking contract logs into model events.
type Decoder struct {
	abi         abi.ABI
	topicToName map[string]string
}

// NewDecoder builds a decoder over every event in the staking ABI.
func NewDecoder() (*Decoder, error) {
	parsed, err := StakingABI()
	if err != nil {
		return nil, err
	}
	topicToName := make(map[string]string, len(parsed.Events))
	for name, event := range parsed.Events {
		topicToName[strings.ToLower(event.ID.Hex())] = name
	}
	return &Decoder{abi: parsed, topicToName: topicToName}, nil
}

// CanDecode checks if the topic0 is a known staking event.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Topics returns the topic0 hashes of every supported event.
func (d *Decoder) Topics() []common.Hash {
	out := make([]common.Hash, 0, len(d.abi.Events))
	for _, event := range d.abi.Events {
		out = append(out, event.ID)
	}
	return out
}

// Decode converts a LogRecord into its event variant.
func (d *Decoder) Decode(log model.LogRecord) (model.Event, error) {
	topic0 := log.Topic0()
	if topic0 == "" {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(topic0)]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", topic0)
	}
	meta, err := eventMeta(log)
	if err != nil {
		return nil, err
	}

	event := d.abi.Events[name]
	topics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return nil, err
	}
	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return nil, err
	}

	switch name {
	case model.EventPoolCreated, model.EventPoolEdited:
		var indexed struct{ PoolId *big.Int }
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		params, err := poolParams(values)
		if err != nil {
			return nil, err
		}
		if name == model.EventPoolCreated {
			return model.PoolCreated{EventMeta: meta, PoolID: indexed.PoolId, Pool: params}, nil
		}
		return model.PoolEdited{EventMeta: meta, PoolID: indexed.PoolId, Pool: params}, nil

	case model.EventUserStaked, model.EventUserWithdrawn:
		var indexed struct {
			PoolId *big.Int
			User   common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if err := expectValues(name, values, 1); err != nil {
			return nil, err
		}
		amount, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		if name == model.EventUserStaked {
			return model.UserStaked{EventMeta: meta, PoolID: indexed.PoolId, User: indexed.User, Amount: amount}, nil
		}
		return model.UserWithdrawn{EventMeta: meta, PoolID: indexed.PoolId, User: indexed.User, Amount: amount}, nil

	case model.EventUserClaimed, model.EventReferrerClaimed:
		var indexed struct {
			PoolId *big.Int
			User   common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if err := expectValues(name, values, 2); err != nil {
			return nil, err
		}
		receiver, err := asAddress(values[0])
		if err != nil {
			return nil, err
		}
		amount, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		if name == model.EventUserClaimed {
			return model.UserClaimed{EventMeta: meta, PoolID: indexed.PoolId, User: indexed.User, Receiver: receiver, Amount: amount}, nil
		}
		return model.ReferrerClaimed{EventMeta: meta, PoolID: indexed.PoolId, User: indexed.User, Receiver: receiver, Amount: amount}, nil

	case model.EventUserClaimLocked:
		var indexed struct {
			PoolId *big.Int
			User   common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if err := expectValues(name, values, 2); err != nil {
			return nil, err
		}
		start, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		end, err := asBigInt(values[1])
		if err != nil {
			return nil, err
		}
		return model.UserClaimLocked{EventMeta: meta, PoolID: indexed.PoolId, User: indexed.User, ClaimLockStart: start, ClaimLockEnd: end}, nil

	case model.EventUserReferred:
		var indexed struct {
			PoolId   *big.Int
			User     common.Address
			Referrer common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		if err := expectValues(name, values, 1); err != nil {
			return nil, err
		}
		amount, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		return model.UserReferred{EventMeta: meta, PoolID: indexed.PoolId, User: indexed.User, Referrer: indexed.Referrer, Amount: amount}, nil

	case model.EventOverplusBridged:
		if err := expectValues(name, values, 2); err != nil {
			return nil, err
		}
		amount, err := asBigInt(values[0])
		if err != nil {
			return nil, err
		}
		uniqueID, ok := values[1].([]byte)
		if !ok {
			return nil, fmt.Errorf("unsupported bytes type %T", values[1])
		}
		return model.OverplusBridged{EventMeta: meta, Amount: amount, UniqueID: uniqueID}, nil

	case model.EventAdminChanged:
		if err := expectValues(name, values, 2); err != nil {
			return nil, err
		}
		prev, err := asAddress(values[0])
		if err != nil {
			return nil, err
		}
		next, err := asAddress(values[1])
		if err != nil {
			return nil, err
		}
		return model.AdminChanged{EventMeta: meta, PreviousAdmin: prev, NewAdmin: next}, nil

	case model.EventBeaconUpgraded:
		var indexed struct{ Beacon common.Address }
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return model.BeaconUpgraded{EventMeta: meta, Beacon: indexed.Beacon}, nil

	case model.EventInitialized:
		if err := expectValues(name, values, 1); err != nil {
			return nil, err
		}
		version, ok := values[0].(uint8)
		if !ok {
			return nil, fmt.Errorf("unsupported version type %T", values[0])
		}
		return model.Initialized{EventMeta: meta, Version: version}, nil

	case model.EventOwnershipTransferred:
		var indexed struct {
			PreviousOwner common.Address
			NewOwner      common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return model.OwnershipTransferred{EventMeta: meta, PreviousOwner: indexed.PreviousOwner, NewOwner: indexed.NewOwner}, nil

	case model.EventUpgraded:
		var indexed struct{ Implementation common.Address }
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		return model.Upgraded{EventMeta: meta, Implementation: indexed.Implementation}, nil

	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}
}

// poolTuple mirrors the ABI tuple so abi.ConvertType can copy into it.
type poolTuple struct {
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

func poolParams(values []interface{}) (model.PoolParams, error) {
	if len(values) != 1 {
		return model.PoolParams{}, fmt.Errorf("unexpected pool values: %d", len(values))
	}
	tuple, ok := abi.ConvertType(values[0], new(poolTuple)).(*poolTuple)
	if !ok {
		return model.PoolParams{}, fmt.Errorf("unsupported pool tuple type %T", values[0])
	}
	return model.PoolParams{
		PayoutStart:                  tuple.PayoutStart,
		DecreaseInterval:             tuple.DecreaseInterval,
		WithdrawLockPeriod:           tuple.WithdrawLockPeriod,
		ClaimLockPeriod:              tuple.ClaimLockPeriod,
		WithdrawLockPeriodAfterStake: tuple.WithdrawLockPeriodAfterStake,
		InitialReward:                tuple.InitialReward,
		RewardDecrease:               tuple.RewardDecrease,
		MinimalStake:                 tuple.MinimalStake,
		IsPublic:                     tuple.IsPublic,
	}, nil
}

func eventMeta(log model.LogRecord) (model.EventMeta, error) {
	if !common.IsHexAddress(log.Address) {
		return model.EventMeta{}, fmt.Errorf("invalid contract address: %s", log.Address)
	}
	txHash, err := hexutil.Decode(log.TxHash)
	if err != nil || len(txHash) != common.HashLength {
		return model.EventMeta{}, fmt.Errorf("invalid tx hash: %s", log.TxHash)
	}
	if log.LogIndex > uint64(^uint32(0)) {
		return model.EventMeta{}, fmt.Errorf("log index out of range: %d", log.LogIndex)
	}
	meta := model.EventMeta{
		Contract:    common.HexToAddress(log.Address),
		TxHash:      common.BytesToHash(txHash),
		LogIndex:    uint32(log.LogIndex),
		BlockNumber: log.BlockNumber,
		Timestamp:   log.Timestamp,
	}
	if common.IsHexAddress(log.TxTo) {
		to := common.HexToAddress(log.TxTo)
		meta.TxTo = &to
	}
	return meta, nil
}

func expectValues(name string, values []interface{}, n int) error {
	if len(values) != n {
		return fmt.Errorf("unexpected %s values: %d", name, len(values))
	}
	return nil
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	out := make([]common.Hash, 0, indexedCount)
	for _, topic := range topics[1:] {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string) ([]interface{}, error) {
	if len(event.Inputs.NonIndexed()) == 0 {
		return nil, nil
	}
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
