/*

Ledger is the balance and allowance book. Total supply is fixed at creation
and conserved by construction: every mutation is a paired debit/credit.

Mutations are recorded in an undo journal so a caller can take a checkpoint
before a multi-step operation and revert every touched entry if any step
fails. The orchestrator in internal/token takes one checkpoint per external
call; no partial mutation survives a failed call.

*/

package ledger

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/tokenforge/tokend/internal/types"
)

// Error definitions for the failure modes of ledger operations.
var (
	ErrZeroAmount          = errors.New("transfer amount must be greater than zero")
	ErrInvalidRecipient    = errors.New("transfer to the zero address")
	ErrInvalidSender       = errors.New("transfer from the zero address")
	ErrInsufficientBalance = errors.New("transfer amount exceeds balance")
	ErrAllowanceExceeded   = errors.New("transfer amount exceeds allowance")
	ErrAmountInvalid       = errors.New("amount is nil or negative")
)

const (
	entryBalance = iota
	entryAllowance
)

// journalEntry remembers the previous value of one touched ledger cell.
type journalEntry struct {
	kind    int
	account types.Address
	spender types.Address
	prev    sdkmath.Int
}

// Ledger holds balances, allowances, and the fixed total supply.
type Ledger struct {
	totalSupply sdkmath.Int
	balances    map[types.Address]sdkmath.Int
	allowances  map[types.Address]map[types.Address]sdkmath.Int
	journal     []journalEntry
}

// New creates a ledger with the full supply credited to holder.
func New(totalSupply sdkmath.Int, holder types.Address) (*Ledger, error) {
	if totalSupply.IsNil() || !totalSupply.IsPositive() {
		return nil, fmt.Errorf("%w: total supply must be positive", ErrAmountInvalid)
	}
	if holder.IsZero() {
		return nil, ErrInvalidRecipient
	}

	l := &Ledger{
		totalSupply: totalSupply,
		balances:    make(map[types.Address]sdkmath.Int),
		allowances:  make(map[types.Address]map[types.Address]sdkmath.Int),
	}
	l.balances[holder] = totalSupply
	return l, nil
}

// TotalSupply returns the fixed supply.
func (l *Ledger) TotalSupply() sdkmath.Int {
	return l.totalSupply
}

// BalanceOf returns the balance of addr, zero for unknown accounts.
func (l *Ledger) BalanceOf(addr types.Address) sdkmath.Int {
	if bal, ok := l.balances[addr]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}

// Allowance returns the remaining allowance for (owner, spender).
func (l *Ledger) Allowance(owner, spender types.Address) sdkmath.Int {
	if spenders, ok := l.allowances[owner]; ok {
		if allowance, ok := spenders[spender]; ok {
			return allowance
		}
	}
	return sdkmath.ZeroInt()
}

// Checkpoint marks the current journal position. Revert with the returned
// value undoes every mutation made after this call.
func (l *Ledger) Checkpoint() int {
	return len(l.journal)
}

// Revert undoes all mutations recorded after checkpoint cp, newest first.
func (l *Ledger) Revert(cp int) {
	for i := len(l.journal) - 1; i >= cp; i-- {
		entry := l.journal[i]
		switch entry.kind {
		case entryBalance:
			l.balances[entry.account] = entry.prev
		case entryAllowance:
			l.setAllowanceRaw(entry.account, entry.spender, entry.prev)
		}
	}
	l.journal = l.journal[:cp]
}

// Release discards journal entries above checkpoint cp once the caller has
// committed to them. Only the outermost checkpoint (0) actually frees the
// journal; nested releases keep entries so an enclosing revert stays possible.
func (l *Ledger) Release(cp int) {
	if cp == 0 {
		l.journal = l.journal[:0]
	}
}

// Credit adds amount to the balance of addr.
func (l *Ledger) Credit(addr types.Address, amount sdkmath.Int) error {
	if addr.IsZero() {
		return ErrInvalidRecipient
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrAmountInvalid
	}

	prev := l.BalanceOf(addr)
	l.journal = append(l.journal, journalEntry{kind: entryBalance, account: addr, prev: prev})
	l.balances[addr] = prev.Add(amount)
	return nil
}

// Debit removes amount from the balance of addr. Fails with
// ErrInsufficientBalance when the balance is smaller than amount.
func (l *Ledger) Debit(addr types.Address, amount sdkmath.Int) error {
	if addr.IsZero() {
		return ErrInvalidSender
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrAmountInvalid
	}

	prev := l.BalanceOf(addr)
	if prev.LT(amount) {
		return ErrInsufficientBalance
	}
	l.journal = append(l.journal, journalEntry{kind: entryBalance, account: addr, prev: prev})
	l.balances[addr] = prev.Sub(amount)
	return nil
}

// TransferInternal debits from and credits to. It never partially applies:
// validation happens before the first mutation.
func (l *Ledger) TransferInternal(from, to types.Address, amount sdkmath.Int) error {
	if from.IsZero() {
		return ErrInvalidSender
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrAmountInvalid
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}

	if err := l.Debit(from, amount); err != nil {
		return err
	}
	return l.Credit(to, amount)
}

// SetAllowance sets the absolute allowance for (owner, spender).
func (l *Ledger) SetAllowance(owner, spender types.Address, amount sdkmath.Int) error {
	if owner.IsZero() {
		return ErrInvalidSender
	}
	if spender.IsZero() {
		return ErrInvalidRecipient
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrAmountInvalid
	}

	prev := l.Allowance(owner, spender)
	l.journal = append(l.journal, journalEntry{kind: entryAllowance, account: owner, spender: spender, prev: prev})
	l.setAllowanceRaw(owner, spender, amount)
	return nil
}

// SpendAllowance decrements the allowance for (owner, spender) by amount.
// Fails with ErrAllowanceExceeded when amount is larger than the recorded
// allowance; the allowance is never driven below zero.
func (l *Ledger) SpendAllowance(owner, spender types.Address, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return ErrAmountInvalid
	}

	current := l.Allowance(owner, spender)
	if current.LT(amount) {
		return ErrAllowanceExceeded
	}
	return l.SetAllowance(owner, spender, current.Sub(amount))
}

func (l *Ledger) setAllowanceRaw(owner, spender types.Address, amount sdkmath.Int) {
	spenders, ok := l.allowances[owner]
	if !ok {
		spenders = make(map[types.Address]sdkmath.Int)
		l.allowances[owner] = spenders
	}
	spenders[spender] = amount
}
