package keys

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool encodes a pool id as minimal big-endian bytes. Pool 0 (and a nil id)
// encodes as a single zero byte so that no key part is empty.
func Pool(id *big.Int) []byte {
	if id == nil || id.Sign() == 0 {
		return []byte{0}
	}
	return new(big.Int).Abs(id).Bytes()
}

// User is the key of a user in single-contract deployments.
func User(address common.Address) []byte {
	return clone(address.Bytes())
}

// ScopedUser is the key of a user in multi deposit-pool deployments.
func ScopedUser(address common.Address, depositPool common.Address, rewardPoolID *big.Int) []byte {
	return concat(address.Bytes(), depositPool.Bytes(), Pool(rewardPoolID))
}

// UserInPool joins a user key and a pool key, user first.
func UserInPool(userKey, poolKey []byte) []byte {
	return concat(userKey, poolKey)
}

// PoolReferrer is the key of a referrer scoped to one pool.
func PoolReferrer(address common.Address, poolID *big.Int) []byte {
	return concat(address.Bytes(), Pool(poolID))
}

// DepositPool is the key of a deposit-pool contract serving a reward pool.
func DepositPool(rewardPoolID *big.Int, depositPool common.Address) []byte {
	return concat(Pool(rewardPoolID), depositPool.Bytes())
}

// Referral joins the referred user key and the referrer key.
func Referral(referredUserKey, referrerKey []byte) []byte {
	return concat(referredUserKey, referrerKey)
}

// Interaction is the key of the seq-th interaction recorded in a transaction.
func Interaction(txHash common.Hash, seq uint32) []byte {
	return binary.LittleEndian.AppendUint32(clone(txHash.Bytes()), seq)
}

// LogEntry is the key of a single log inside a transaction.
func LogEntry(txHash common.Hash, logIndex uint32) []byte {
	return binary.LittleEndian.AppendUint32(clone(txHash.Bytes()), logIndex)
}

// Transaction is the key of per-transaction records.
func Transaction(txHash common.Hash) []byte {
	return clone(txHash.Bytes())
}

func concat(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]byte, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
