package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// cacheSize bounds each lookup cache.
const cacheSize = 50_000

// Client is the RPC surface the indexer and the usersData resolver need:
// log filtering, block timestamps, transaction recipients and eth_call.
type Client struct {
	rpcClient *rpc.Client
	eth       *ethclient.Client

	timestamps *lru.Cache[uint64, uint64]
	recipients *lru.Cache[common.Hash, *common.Address]
}

// NewClient dials rpcURL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient:  rpcClient,
		eth:        ethclient.NewClient(rpcClient),
		timestamps: lru.NewCache[uint64, uint64](cacheSize),
		recipients: lru.NewCache[common.Hash, *common.Address](cacheSize),
	}, nil
}

func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// BlockTimestamp returns the header time of block number.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	if ts, ok := c.timestamps.Get(number); ok {
		return ts, nil
	}
	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, fmt.Errorf("header %d: %w", number, err)
	}
	c.timestamps.Add(number, header.Time)
	return header.Time, nil
}

// TransactionRecipient returns the `to` address of a transaction, nil for
// contract creations.
func (c *Client) TransactionRecipient(ctx context.Context, txHash common.Hash) (*common.Address, error) {
	if to, ok := c.recipients.Get(txHash); ok {
		return to, nil
	}
	tx, _, err := c.eth.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", txHash.Hex(), err)
	}
	to := tx.To()
	c.recipients.Add(txHash, to)
	return to, nil
}

// FilterLogs returns the logs emitted by addresses in [fromBlock, toBlock]
// whose topic0 is one of topic0. An empty topic0 matches every event.
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	return c.eth.FilterLogs(ctx, query)
}

// CallContract performs an eth_call at blockNumber, or latest when nil.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, blockNumber)
}
