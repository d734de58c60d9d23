package testing

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/chain"
)

// Account represents a named test account.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is derived from Name.
	Address common.Address
}

// NewAccount creates an account whose address is derived from name.
// The same name always produces the same address.
func NewAccount(name string) *Account {
	return &Account{
		Name:    name,
		Address: chain.AddressFromName(name),
	}
}

// accountAt wraps an address that already has a name elsewhere.
func accountAt(name string, addr common.Address) *Account {
	return &Account{Name: name, Address: addr}
}

// String returns the account's name.
func (a *Account) String() string {
	return a.Name
}

// Accounts returns the addresses of accs.
func Accounts(accs ...*Account) []common.Address {
	out := make([]common.Address, len(accs))
	for i, a := range accs {
		out[i] = a.Address
	}
	return out
}
