package state

import (
	"errors"
	"fmt"
	"math/big"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/types"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// balance of its source
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
)

// keys of the world tree. Accounts, storage slots and token balances live
// in the same tree so a snapshot captures all of them.
var (
	accountPrefix = []byte{'a'}
	storagePrefix = []byte{'s'}
	tokenPrefix   = []byte{'t'}

	// logIndex is the index of the logs in the tree
	logIndex = []byte{'l'}

	// refundIndex is the index of the refund counter
	refundIndex = []byte{'r'}
)

func accountKey(addr types.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

func storageKey(addr types.Address, index types.Hash) []byte {
	k := append(append([]byte{}, storagePrefix...), addr.Bytes()...)

	return append(k, index.Bytes()...)
}

func tokenKey(addr types.Address, tokenID *big.Int) []byte {
	k := append(append([]byte{}, tokenPrefix...), addr.Bytes()...)

	return append(k, types.BytesToHash(tokenID.Bytes()).Bytes()...)
}

// stateObject is the internal representation of the account
type stateObject struct {
	Nonce    uint64
	Balance  *big.Int
	Code     []byte
	CodeHash types.Hash
	Suicide  bool
}

func newStateObject() *stateObject {
	return &stateObject{
		Balance:  big.NewInt(0),
		CodeHash: types.EmptyCodeHash,
	}
}

func (s *stateObject) Empty() bool {
	return s.Nonce == 0 && s.Balance.Sign() == 0 && s.CodeHash == types.EmptyCodeHash
}

// Copy makes a copy of the state object
func (s *stateObject) Copy() *stateObject {
	ss := *s
	ss.Balance = new(big.Int).Set(s.Balance)

	return &ss
}

// World is the in memory state a message executes against. Every write goes
// to an immutable radix transaction, snapshots are committed roots of it.
type World struct {
	// committed is the state at the beginning of the current message
	committed *iradix.Tree
	snapshots []*iradix.Tree
	txn       *iradix.Txn
}

// NewWorld creates an empty world
func NewWorld() *World {
	root := iradix.New()

	return &World{
		committed: root,
		snapshots: []*iradix.Tree{},
		txn:       root.Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (w *World) Snapshot() int {
	t := w.txn.CommitOnly()

	id := len(w.snapshots)
	w.snapshots = append(w.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot
func (w *World) RevertToSnapshot(id int) {
	if id < 0 || id >= len(w.snapshots) {
		panic(fmt.Sprintf("BUG: snapshot %d out of range", id))
	}

	w.txn = w.snapshots[id].Txn()
	w.snapshots = w.snapshots[:id]
}

// Commit finishes the current message. Suicided accounts are removed,
// logs and refunds are dropped, and the result becomes the committed state.
func (w *World) Commit() {
	var suicided []types.Address

	w.txn.Root().WalkPrefix(accountPrefix, func(k []byte, v interface{}) bool {
		obj, ok := v.(*stateObject)
		if ok && obj.Suicide {
			suicided = append(suicided, types.BytesToAddress(k[len(accountPrefix):]))
		}

		return false
	})

	for _, addr := range suicided {
		w.txn.Delete(accountKey(addr))
		w.txn.DeletePrefix(storageKey(addr, types.ZeroHash)[:len(storagePrefix)+types.AddressLength])
		w.txn.DeletePrefix(tokenKey(addr, new(big.Int))[:len(tokenPrefix)+types.AddressLength])
	}

	w.txn.Delete(logIndex)
	w.txn.Delete(refundIndex)

	w.committed = w.txn.Commit()
	w.txn = w.committed.Txn()
	w.snapshots = w.snapshots[:0]
}

// Seed writes a genesis allocation into the committed state
func (w *World) Seed(alloc chain.GenesisAlloc) {
	for addr, account := range alloc {
		if account.Balance != nil {
			w.SetBalance(addr, account.Balance)
		}

		if account.Nonce != 0 {
			w.SetNonce(addr, account.Nonce)
		}

		if len(account.Code) != 0 {
			w.SetCode(addr, account.Code)
		}

		for index, value := range account.Storage {
			w.SetState(addr, index, value)
		}

		for id, amount := range account.Tokens {
			w.AddTokenBalance(addr, new(big.Int).SetUint64(id), amount)
		}
	}

	w.Commit()
}

func (w *World) getStateObject(addr types.Address) (*stateObject, bool) {
	val, exists := w.txn.Get(accountKey(addr))
	if !exists {
		return nil, false
	}

	obj, ok := val.(*stateObject)
	if !ok {
		panic("BUG: account entry is not a state object")
	}

	return obj.Copy(), true
}

func (w *World) upsertAccount(addr types.Address, create bool, f func(object *stateObject)) {
	object, exists := w.getStateObject(addr)
	if !exists && create {
		object = newStateObject()
	}

	// run the callback to modify the account
	f(object)

	if object != nil {
		w.txn.Insert(accountKey(addr), object)
	}
}

// Exist reports whether the account is in the state
func (w *World) Exist(addr types.Address) bool {
	_, exists := w.getStateObject(addr)

	return exists
}

// Empty reports whether the account has no nonce, balance and code
func (w *World) Empty(addr types.Address) bool {
	obj, exists := w.getStateObject(addr)
	if !exists {
		return true
	}

	return obj.Empty()
}

// CreateAccount resets an account, keeping its balance
func (w *World) CreateAccount(addr types.Address) {
	obj := newStateObject()

	if prev, ok := w.getStateObject(addr); ok {
		obj.Balance.Set(prev.Balance)
	}

	w.txn.Insert(accountKey(addr), obj)
}

// Balance

// AddBalance adds balance
func (w *World) AddBalance(addr types.Address, balance *big.Int) {
	w.upsertAccount(addr, true, func(object *stateObject) {
		object.Balance.Add(object.Balance, balance)
	})
}

// SubBalance reduces the balance
func (w *World) SubBalance(addr types.Address, balance *big.Int) error {
	if w.GetBalance(addr).Cmp(balance) < 0 {
		return ErrInsufficientBalance
	}

	w.upsertAccount(addr, true, func(object *stateObject) {
		object.Balance.Sub(object.Balance, balance)
	})

	return nil
}

// SetBalance sets the balance
func (w *World) SetBalance(addr types.Address, balance *big.Int) {
	w.upsertAccount(addr, true, func(object *stateObject) {
		object.Balance.Set(balance)
	})
}

// GetBalance returns the balance of an address
func (w *World) GetBalance(addr types.Address) *big.Int {
	object, exists := w.getStateObject(addr)
	if !exists {
		return big.NewInt(0)
	}

	return object.Balance
}

// TRC-10 tokens

// GetTokenBalance returns the balance of a TRC-10 token
func (w *World) GetTokenBalance(addr types.Address, tokenID *big.Int) *big.Int {
	val, ok := w.txn.Get(tokenKey(addr, tokenID))
	if !ok {
		return big.NewInt(0)
	}

	return new(big.Int).Set(val.(*big.Int)) //nolint:forcetypeassert
}

// AddTokenBalance credits a TRC-10 token
func (w *World) AddTokenBalance(addr types.Address, tokenID, amount *big.Int) {
	balance := w.GetTokenBalance(addr, tokenID)
	w.txn.Insert(tokenKey(addr, tokenID), balance.Add(balance, amount))

	// an account holding tokens exists
	w.upsertAccount(addr, true, func(*stateObject) {})
}

// SubTokenBalance debits a TRC-10 token
func (w *World) SubTokenBalance(addr types.Address, tokenID, amount *big.Int) error {
	balance := w.GetTokenBalance(addr, tokenID)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	w.txn.Insert(tokenKey(addr, tokenID), balance.Sub(balance, amount))

	return nil
}

// WalkTokens calls fn for every token held by an account
func (w *World) WalkTokens(addr types.Address, fn func(tokenID, balance *big.Int)) {
	prefix := tokenKey(addr, new(big.Int))[:len(tokenPrefix)+types.AddressLength]

	w.txn.Root().WalkPrefix(prefix, func(k []byte, v interface{}) bool {
		balance, ok := v.(*big.Int)
		if ok && balance.Sign() != 0 {
			fn(new(big.Int).SetBytes(k[len(prefix):]), new(big.Int).Set(balance))
		}

		return false
	})
}

// Transfer moves value between two accounts
func (w *World) Transfer(from, to types.Address, value *big.Int) error {
	if err := w.SubBalance(from, value); err != nil {
		return err
	}

	w.AddBalance(to, value)

	return nil
}

// TransferToken moves a TRC-10 token between two accounts
func (w *World) TransferToken(from, to types.Address, tokenID, value *big.Int) error {
	if err := w.SubTokenBalance(from, tokenID, value); err != nil {
		return err
	}

	w.AddTokenBalance(to, tokenID, value)

	return nil
}

// Nonce

// SetNonce sets the nonce of an account
func (w *World) SetNonce(addr types.Address, nonce uint64) {
	w.upsertAccount(addr, true, func(object *stateObject) {
		object.Nonce = nonce
	})
}

// IncrNonce increases the nonce of an account by one
func (w *World) IncrNonce(addr types.Address) {
	w.upsertAccount(addr, true, func(object *stateObject) {
		object.Nonce++
	})
}

// GetNonce returns the nonce of an addr
func (w *World) GetNonce(addr types.Address) uint64 {
	object, exists := w.getStateObject(addr)
	if !exists {
		return 0
	}

	return object.Nonce
}

// Code

// SetCode sets the code for an address
func (w *World) SetCode(addr types.Address, code []byte) {
	w.upsertAccount(addr, true, func(object *stateObject) {
		object.CodeHash = crypto.Keccak256Hash(code)
		object.Code = code
	})
}

func (w *World) GetCode(addr types.Address) []byte {
	object, exists := w.getStateObject(addr)
	if !exists {
		return nil
	}

	return object.Code
}

func (w *World) GetCodeSize(addr types.Address) int {
	return len(w.GetCode(addr))
}

// GetCodeHash returns the code hash, or the zero hash for missing accounts
func (w *World) GetCodeHash(addr types.Address) types.Hash {
	object, exists := w.getStateObject(addr)
	if !exists {
		return types.ZeroHash
	}

	return object.CodeHash
}

// Storage

// SetState changes the storage of an address
func (w *World) SetState(addr types.Address, key, value types.Hash) {
	if value == types.ZeroHash {
		w.txn.Delete(storageKey(addr, key))
	} else {
		w.txn.Insert(storageKey(addr, key), value)
	}

	w.upsertAccount(addr, true, func(*stateObject) {})
}

// GetState returns the storage of the address at a given key
func (w *World) GetState(addr types.Address, key types.Hash) types.Hash {
	return getStorage(w.txn.Get, addr, key)
}

// GetCommittedState returns the storage value at the beginning of the message
func (w *World) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	return getStorage(w.committed.Get, addr, key)
}

func getStorage(get func(k []byte) (interface{}, bool), addr types.Address, key types.Hash) types.Hash {
	val, ok := get(storageKey(addr, key))
	if !ok {
		return types.ZeroHash
	}

	return val.(types.Hash) //nolint:forcetypeassert
}

// Suicide

// Suicide marks the given account as suicided and clears its balance
func (w *World) Suicide(addr types.Address) bool {
	var suicided bool

	w.upsertAccount(addr, false, func(object *stateObject) {
		if object == nil || object.Suicide {
			suicided = false
		} else {
			suicided = true
			object.Suicide = true
			object.Balance = new(big.Int)
		}
	})

	return suicided
}

// HasSuicided returns true if the account suicided
func (w *World) HasSuicided(addr types.Address) bool {
	object, exists := w.getStateObject(addr)

	return exists && object.Suicide
}

// Refund

func (w *World) AddRefund(gas uint64) {
	refund := w.GetRefund() + gas
	w.txn.Insert(refundIndex, refund)
}

func (w *World) SubRefund(gas uint64) {
	refund := w.GetRefund()
	if gas > refund {
		panic(fmt.Sprintf("BUG: refund counter below zero (%d < %d)", refund, gas))
	}

	w.txn.Insert(refundIndex, refund-gas)
}

func (w *World) GetRefund() uint64 {
	data, exists := w.txn.Get(refundIndex)
	if !exists {
		return 0
	}

	return data.(uint64) //nolint:forcetypeassert
}

// Logs

// AddLog adds a new log
func (w *World) AddLog(log *types.Log) {
	var logs []*types.Log

	if data, exists := w.txn.Get(logIndex); exists {
		logs = data.([]*types.Log) //nolint:forcetypeassert
	}

	// the stored slice is shared with older snapshots
	next := make([]*types.Log, len(logs), len(logs)+1)
	copy(next, logs)

	w.txn.Insert(logIndex, append(next, log))
}

func (w *World) Logs() []*types.Log {
	data, exists := w.txn.Get(logIndex)
	if !exists {
		return nil
	}

	return data.([]*types.Log) //nolint:forcetypeassert
}
