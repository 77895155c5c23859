package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"coffee-change.backend/internal/domain/entities"
)

const chronicleOracleABI = `[
	{"inputs":[],"name":"read","outputs":[
		{"internalType":"uint256","name":"val","type":"uint256"},
		{"internalType":"uint256","name":"age","type":"uint256"}
	],"stateMutability":"view","type":"function"}
]`

const coffeeChangeABI = `[
	{"inputs":[],"name":"s_balanceOfContractInEth","outputs":[
		{"internalType":"uint256","name":"","type":"uint256"}
	],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"","type":"address"}],"name":"s_userPositions","outputs":[
		{"internalType":"uint256","name":"depositsInContract","type":"uint256"},
		{"internalType":"uint256","name":"depositedInAave","type":"uint256"},
		{"internalType":"uint256","name":"userFirstContributionTimestamp","type":"uint256"},
		{"internalType":"uint256","name":"timestampToWithdraw","type":"uint256"}
	],"stateMutability":"view","type":"function"}
]`

// ChronicleOracle reads the ETH/USD price from a Chronicle oracle reader contract
type ChronicleOracle struct {
	caller  ViewCaller
	address string
	abi     abi.ABI
}

// NewChronicleOracle binds the oracle reader deployed at address
func NewChronicleOracle(caller ViewCaller, address string) (*ChronicleOracle, error) {
	parsed, err := abi.JSON(strings.NewReader(chronicleOracleABI))
	if err != nil {
		return nil, err
	}
	return &ChronicleOracle{caller: caller, address: address, abi: parsed}, nil
}

// Read returns the raw 18-decimal value and its age in unix seconds
func (o *ChronicleOracle) Read(ctx context.Context) (*entities.OracleReading, error) {
	vals, err := callView(ctx, o.caller, o.address, o.abi, "read")
	if err != nil {
		return nil, err
	}
	ints, err := bigInts(vals, 2)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return &entities.OracleReading{Value: ints[0], Age: ints[1]}, nil
}

// CoffeeChangeContract reads user positions from the CoffeeChange vault
type CoffeeChangeContract struct {
	caller  ViewCaller
	address string
	abi     abi.ABI
}

// NewCoffeeChangeContract binds the vault deployed at address
func NewCoffeeChangeContract(caller ViewCaller, address string) (*CoffeeChangeContract, error) {
	parsed, err := abi.JSON(strings.NewReader(coffeeChangeABI))
	if err != nil {
		return nil, err
	}
	return &CoffeeChangeContract{caller: caller, address: address, abi: parsed}, nil
}

// Position returns the wallet's vault position plus the contract's ETH balance
func (c *CoffeeChangeContract) Position(ctx context.Context, walletAddress string) (*entities.ContractPosition, error) {
	vals, err := callView(ctx, c.caller, c.address, c.abi, "s_userPositions", common.HexToAddress(walletAddress))
	if err != nil {
		return nil, err
	}
	pos, err := bigInts(vals, 4)
	if err != nil {
		return nil, fmt.Errorf("s_userPositions: %w", err)
	}

	vals, err = callView(ctx, c.caller, c.address, c.abi, "s_balanceOfContractInEth")
	if err != nil {
		return nil, err
	}
	bal, err := bigInts(vals, 1)
	if err != nil {
		return nil, fmt.Errorf("s_balanceOfContractInEth: %w", err)
	}

	return &entities.ContractPosition{
		DepositsInContract:  pos[0],
		DepositedInAave:     pos[1],
		FirstContributionAt: pos[2],
		TimestampToWithdraw: pos[3],
		ContractBalanceWei:  bal[0],
	}, nil
}

func callView(ctx context.Context, caller ViewCaller, address string, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := caller.CallView(ctx, address, data)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	vals, err := parsed.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return vals, nil
}

func bigInts(vals []interface{}, want int) ([]*big.Int, error) {
	if len(vals) != want {
		return nil, fmt.Errorf("expected %d outputs, got %d", want, len(vals))
	}
	out := make([]*big.Int, want)
	for i, v := range vals {
		n, ok := v.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("output %d is %T", i, v)
		}
		out[i] = n
	}
	return out, nil
}
