package distribution

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// stakingEventsABIJSON covers the events shared by the distribution and
// deposit-pool contracts. Deposit pools name the first argument
// rewardPoolIndex; the signatures are identical.
const stakingEventsABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "previousAdmin", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "newAdmin", "type": "address"}
    ],
    "name": "AdminChanged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "beacon", "type": "address"}
    ],
    "name": "BeaconUpgraded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint8", "name": "version", "type": "uint8"}
    ],
    "name": "Initialized",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "bytes", "name": "uniqueId", "type": "bytes"}
    ],
    "name": "OverplusBridged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "previousOwner", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "newOwner", "type": "address"}
    ],
    "name": "OwnershipTransferred",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {
        "indexed": false, "internalType": "struct IDistribution.Pool", "name": "pool", "type": "tuple",
        "components": [
          {"internalType": "uint128", "name": "payoutStart", "type": "uint128"},
          {"internalType": "uint128", "name": "decreaseInterval", "type": "uint128"},
          {"internalType": "uint128", "name": "withdrawLockPeriod", "type": "uint128"},
          {"internalType": "uint128", "name": "claimLockPeriod", "type": "uint128"},
          {"internalType": "uint128", "name": "withdrawLockPeriodAfterStake", "type": "uint128"},
          {"internalType": "uint256", "name": "initialReward", "type": "uint256"},
          {"internalType": "uint256", "name": "rewardDecrease", "type": "uint256"},
          {"internalType": "uint256", "name": "minimalStake", "type": "uint256"},
          {"internalType": "bool", "name": "isPublic", "type": "bool"}
        ]
      }
    ],
    "name": "PoolCreated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {
        "indexed": false, "internalType": "struct IDistribution.Pool", "name": "pool", "type": "tuple",
        "components": [
          {"internalType": "uint128", "name": "payoutStart", "type": "uint128"},
          {"internalType": "uint128", "name": "decreaseInterval", "type": "uint128"},
          {"internalType": "uint128", "name": "withdrawLockPeriod", "type": "uint128"},
          {"internalType": "uint128", "name": "claimLockPeriod", "type": "uint128"},
          {"internalType": "uint128", "name": "withdrawLockPeriodAfterStake", "type": "uint128"},
          {"internalType": "uint256", "name": "initialReward", "type": "uint256"},
          {"internalType": "uint256", "name": "rewardDecrease", "type": "uint256"},
          {"internalType": "uint256", "name": "minimalStake", "type": "uint256"},
          {"internalType": "bool", "name": "isPublic", "type": "bool"}
        ]
      }
    ],
    "name": "PoolEdited",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "receiver", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "ReferrerClaimed",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "implementation", "type": "address"}
    ],
    "name": "Upgraded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint128", "name": "claimLockStart", "type": "uint128"},
      {"indexed": false, "internalType": "uint128", "name": "claimLockEnd", "type": "uint128"}
    ],
    "name": "UserClaimLocked",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "receiver", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "UserClaimed",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "referrer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "UserReferred",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "UserStaked",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "poolId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "UserWithdrawn",
    "type": "event"
  }
]`

var (
	stakingABI     abi.ABI
	stakingABIOnce sync.Once
	stakingABIErr  error
)

// StakingABI returns the parsed staking event ABI.
func StakingABI() (abi.ABI, error) {
	stakingABIOnce.Do(func() {
		stakingABI, stakingABIErr = abi.JSON(strings.NewReader(stakingEventsABIJSON))
	})
	return stakingABI, stakingABIErr
}
