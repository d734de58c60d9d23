package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ZeroAddress receives the locked minimum liquidity of every pair.
	ZeroAddress = common.Address{}

	// DeadAddress is the conventional burn sink.
	DeadAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
)

// AddressFromName derives a stable address from a human-readable name:
// the last 20 bytes of keccak256(name).
func AddressFromName(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(name))[12:])
}

// DeriveAddress derives a contract address from a creator and salt parts,
// CREATE2 style.
func DeriveAddress(creator common.Address, salt ...[]byte) common.Address {
	parts := append([][]byte{{0xff}, creator.Bytes()}, salt...)
	return common.BytesToAddress(crypto.Keccak256(parts...)[12:])
}
