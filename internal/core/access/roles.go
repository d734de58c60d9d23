package access

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/LeJamon/goExilon/internal/core/chain"
)

// DefaultAdminRole administers every role unless SetRoleAdmin says otherwise.
var DefaultAdminRole = common.Hash{}

var (
	// ErrMissingRole is returned when the caller lacks the admin role of the role being changed
	ErrMissingRole = errors.New("access: account is missing role")

	// ErrRenounceForSelf is returned when an account tries to renounce a role for another account
	ErrRenounceForSelf = errors.New("access: can only renounce roles for self")
)

// Role derives a role identifier from its name.
func Role(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

type membership struct {
	role    common.Hash
	account common.Address
}

// Roles is a role table with per-role admin roles.
type Roles struct {
	chain   *chain.Chain
	address common.Address
	members map[membership]bool
	admins  map[common.Hash]common.Hash
}

// New creates a role table and grants DefaultAdminRole to admin.
func New(c *chain.Chain, address, admin common.Address) *Roles {
	r := &Roles{
		chain:   c,
		address: address,
		members: make(map[membership]bool),
		admins:  make(map[common.Hash]common.Hash),
	}
	r.grant(DefaultAdminRole, admin, admin)
	return r
}

func (r *Roles) HasRole(role common.Hash, account common.Address) bool {
	return r.members[membership{role, account}]
}

func (r *Roles) GetRoleAdmin(role common.Hash) common.Hash {
	return r.admins[role]
}

// SetRoleAdmin changes the admin role of role. The caller must hold the
// current admin role.
func (r *Roles) SetRoleAdmin(caller common.Address, role, adminRole common.Hash) error {
	return r.chain.Atomic(func() error {
		if err := r.check(r.GetRoleAdmin(role), caller); err != nil {
			return err
		}
		chain.SetMap(r.chain.Journal(), r.admins, role, adminRole)
		return nil
	})
}

func (r *Roles) GrantRole(caller common.Address, role common.Hash, account common.Address) error {
	return r.chain.Atomic(func() error {
		if err := r.check(r.GetRoleAdmin(role), caller); err != nil {
			return err
		}
		r.grant(role, account, caller)
		return nil
	})
}

func (r *Roles) RevokeRole(caller common.Address, role common.Hash, account common.Address) error {
	return r.chain.Atomic(func() error {
		if err := r.check(r.GetRoleAdmin(role), caller); err != nil {
			return err
		}
		r.revoke(role, account, caller)
		return nil
	})
}

func (r *Roles) RenounceRole(caller common.Address, role common.Hash, account common.Address) error {
	return r.chain.Atomic(func() error {
		if caller != account {
			return ErrRenounceForSelf
		}
		r.revoke(role, account, caller)
		return nil
	})
}

func (r *Roles) check(role common.Hash, account common.Address) error {
	if !r.HasRole(role, account) {
		return fmt.Errorf("%w: %s lacks %s", ErrMissingRole, account.Hex(), role.Hex())
	}
	return nil
}

func (r *Roles) grant(role common.Hash, account, sender common.Address) {
	key := membership{role, account}
	if r.members[key] {
		return
	}
	chain.SetMap(r.chain.Journal(), r.members, key, true)
	r.chain.Emit(chain.Event{
		Contract: r.address,
		Kind:     chain.EventRoleGranted,
		From:     sender,
		To:       account,
		Note:     role.Hex(),
	})
}

func (r *Roles) revoke(role common.Hash, account, sender common.Address) {
	key := membership{role, account}
	if !r.members[key] {
		return
	}
	chain.DeleteMap(r.chain.Journal(), r.members, key)
	r.chain.Emit(chain.Event{
		Contract: r.address,
		Kind:     chain.EventRoleRevoked,
		From:     sender,
		To:       account,
		Note:     role.Hex(),
	})
}
