package strategy_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/simonbindefeld/merkleproof-service/pkg/strategy"
)

const testKeyHex = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var (
	collectionAddr = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	borrowerAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	positionsAddr  = common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")
	wethAddr       = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdcAddr       = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	vaultAddr      = common.HexToAddress("0x2222222222222222222222222222222222222222")
	routerAddr     = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testRoot       = common.HexToHash("0x6b3dfaec148fb1bb2b066f10ec285e7c9bf402ab32aa78a5d38e34566810cd2e")
	testLeafHash   = common.HexToHash("0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563")
)

func u256(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

func ether(n int64) uint256.Int {
	v, overflow := uint256.FromBig(new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18)))
	if overflow {
		panic("ether overflow")
	}
	return *v
}

func testLien() strategy.Lien {
	return strategy.Lien{
		Amount:                ether(1),
		Rate:                  u256(1),
		Duration:              u256(86400),
		MaxPotentialDebt:      u256(0),
		LiquidationInitialAsk: ether(2),
	}
}

func testUniV3Params() strategy.UniV3Params {
	return strategy.UniV3Params{
		Token0:       usdcAddr,
		Token1:       wethAddr,
		Fee:          3000,
		TickLower:    -887220,
		TickUpper:    887220,
		MinLiquidity: u256(1_000_000),
		Amount0Min:   u256(500),
		Amount1Min:   ether(1),
	}
}

func mustCollateral(t *testing.T, tokenID uint64) strategy.Row {
	t.Helper()
	id := u256(tokenID)
	row, err := strategy.NewCollateral(collectionAddr, &id, borrowerAddr, testLien())
	require.NoError(t, err)
	return row
}

func mustCollection(t *testing.T) strategy.Row {
	t.Helper()
	row, err := strategy.NewCollection(collectionAddr, common.Address{}, testLien())
	require.NoError(t, err)
	return row
}

func mustUniV3(t *testing.T) strategy.Row {
	t.Helper()
	row, err := strategy.NewUniV3Collateral(positionsAddr, borrowerAddr, testLien(), testUniV3Params())
	require.NoError(t, err)
	return row
}

func withLeaf(t *testing.T, row strategy.Row, leaf common.Hash) strategy.Row {
	t.Helper()
	out, err := row.WithLeaf(leaf)
	require.NoError(t, err)
	return out
}

func testSigner(t *testing.T) *strategy.KeySigner {
	t.Helper()
	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	return strategy.NewKeySigner(key)
}
