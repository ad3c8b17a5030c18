package ledger

import (
	"github.com/nspcc-dev/ledger-contract/common"
	"github.com/nspcc-dev/ledger-contract/contracts/ledger/ledgerconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Metadata holds descriptive token info fixed at deployment.
type Metadata struct {
	// Human-readable token name
	Name string
	// Ticker symbol
	Symbol string
	// Amount of decimals, 0..255
	Decimals int
	// Sum of all balances, never changes after deployment
	TotalSupply int
}

const (
	metadataKey        = "token"
	legacyAllowanceKey = "legacyAllowance"

	balancePrefix   = 'b'
	ownerPrefix     = 'o'
	allowancePrefix = 'a'

	// 2^64, amounts are strictly below it.
	amountLimit = "18446744073709551616"

	maxDecimals = 255
)

// Outcomes of mutating operations, they define which notification is thrown.
const (
	applied = iota
	insufficientFunds
	insufficientAllowance
	noAllowanceRecord
	noBalanceRecord
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	meta := Metadata{
		Name:        ledgerconst.DefaultName,
		Symbol:      ledgerconst.DefaultSymbol,
		Decimals:    ledgerconst.DefaultDecimals,
		TotalSupply: ledgerconst.DefaultTotalSupply,
	}
	legacyAllowance := false

	if data != nil {
		args := data.([]any)
		if len(args) < ledgerconst.LegacyAllowanceIndex {
			panic("invalid deployment data")
		}

		meta = Metadata{
			Name:        args[ledgerconst.NameIndex].(string),
			Symbol:      args[ledgerconst.SymbolIndex].(string),
			Decimals:    args[ledgerconst.DecimalsIndex].(int),
			TotalSupply: args[ledgerconst.TotalSupplyIndex].(int),
		}
		if len(args) > ledgerconst.LegacyAllowanceIndex {
			legacyAllowance = args[ledgerconst.LegacyAllowanceIndex].(bool)
		}
	}

	if meta.Decimals < 0 || meta.Decimals > maxDecimals {
		panic("invalid decimals")
	}
	if !isAmount(meta.TotalSupply) {
		panic("invalid total supply")
	}

	common.SetSerialized(ctx, metadataKey, meta)
	if legacyAllowance {
		storage.Put(ctx, legacyAllowanceKey, 1)
	}

	putAmount(ctx, balanceKey(caller()), meta.TotalSupply)

	runtime.Log("ledger contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	common.CheckUpdateAccess()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("ledger contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Token returns a copy of the token metadata.
func Token() Metadata {
	return getMetadata(storage.GetReadOnlyContext())
}

// Symbol returns ticker symbol of the token.
func Symbol() string {
	return getMetadata(storage.GetReadOnlyContext()).Symbol
}

// Decimals returns precision of the token balances.
func Decimals() int {
	return getMetadata(storage.GetReadOnlyContext()).Decimals
}

// TotalSupply returns total amount of tokens. It is fixed at deployment.
func TotalSupply() int {
	return getMetadata(storage.GetReadOnlyContext()).TotalSupply
}

// BalanceOf returns balance of the account, zero if the account has never
// been credited.
func BalanceOf(account interop.Hash160) int {
	checkAccount(account)

	balance, _ := getAmount(storage.GetReadOnlyContext(), balanceKey(account))
	return balance
}

// Balances returns iterator over all balance records. Items are structures of
// two elements: account and its balance. Accounts that have never been
// credited are not listed.
func Balances() iterator.Iterator {
	return storage.Find(storage.GetReadOnlyContext(), []byte{balancePrefix},
		storage.RemovePrefix|storage.DeserializeValues)
}

// Allowance returns amount the spender may move out of the owner's balance
// with TransferFrom.
func Allowance(owner, spender interop.Hash160) int {
	checkAccount(owner)
	checkAccount(spender)

	allowance, _ := getAmount(storage.GetReadOnlyContext(), allowanceKey(owner, spender))
	return allowance
}

// Transfer moves amount from the transaction sender to the recipient. Transfer
// with insufficient funds leaves balances untouched.
//
// It produces Transfer notification with the requested amount regardless of
// whether the funds were moved.
func Transfer(to interop.Hash160, amount int) {
	checkAccount(to)
	checkAmount(amount)

	ctx := storage.GetContext()
	from := caller()

	if move(ctx, from, to, amount) != applied {
		runtime.Log("not enough assets")
	}

	notifyTransfer(from, to, amount)
}

// SetAllowance overwrites amount the spender may move out of the transaction
// sender's balance. The amount can't exceed the sender's balance at the
// moment of the call.
//
// It produces SetAllowance notification with the amount if the allowance is
// set, and with zero amount if the sender has never been credited.
func SetAllowance(spender interop.Hash160, amount int) {
	checkAccount(spender)
	checkAmount(amount)

	ctx := storage.GetContext()
	owner := caller()

	switch approve(ctx, owner, spender, amount) {
	case applied:
		notifySetAllowance(owner, spender, amount)
	case noBalanceRecord:
		runtime.Log("owner has no balance record")
		notifySetAllowance(owner, spender, 0)
	case noAllowanceRecord:
		runtime.Log("owner has no allowance record")
	default:
		runtime.Log("not enough assets")
	}
}

// TransferFrom moves amount from one account to another on behalf of the
// transaction sender, spending the allowance given to the sender by the
// owner of the funds.
//
// It produces Transfer notification with the amount if the funds are moved,
// and with zero amount if the owner has no allowance record.
func TransferFrom(from, to interop.Hash160, amount int) {
	checkAccount(from)
	checkAccount(to)
	checkAmount(amount)

	ctx := storage.GetContext()
	spender := caller()

	switch spend(ctx, spender, from, to, amount) {
	case applied:
		notifyTransfer(from, to, amount)
	case noAllowanceRecord:
		runtime.Log("owner has no allowance record")
		notifyTransfer(from, to, 0)
	case insufficientAllowance:
		runtime.Log("not enough allowance")
	default:
		runtime.Log("not enough assets")
	}
}

// move checks that from holds at least amount and moves it to the recipient.
// Storage is written only when the move is applied.
func move(ctx storage.Context, from, to interop.Hash160, amount int) int {
	fromBalance, _ := getAmount(ctx, balanceKey(from))
	if fromBalance < amount {
		return insufficientFunds
	}

	if amount == 0 || from.Equals(to) {
		return applied
	}

	toBalance, _ := getAmount(ctx, balanceKey(to))

	putAmount(ctx, balanceKey(from), fromBalance-amount)
	putAmount(ctx, balanceKey(to), toBalance+amount)

	return applied
}

func approve(ctx storage.Context, owner, spender interop.Hash160, amount int) int {
	balance, ok := getAmount(ctx, balanceKey(owner))
	if !ok {
		return noBalanceRecord
	}

	if balance < amount {
		return insufficientFunds
	}

	if storage.Get(ctx, ownerKey(owner)) == nil {
		if storage.Get(ctx, legacyAllowanceKey) != nil {
			return noAllowanceRecord
		}

		storage.Put(ctx, ownerKey(owner), 1)
	}

	putAmount(ctx, allowanceKey(owner, spender), amount)

	return applied
}

func spend(ctx storage.Context, spender, from, to interop.Hash160, amount int) int {
	allowance, _ := getAmount(ctx, allowanceKey(from, spender))
	if allowance < amount {
		return insufficientAllowance
	}

	if storage.Get(ctx, ownerKey(from)) == nil {
		return noAllowanceRecord
	}

	res := move(ctx, from, to, amount)
	if res != applied {
		return res
	}

	if amount > 0 {
		putAmount(ctx, allowanceKey(from, spender), allowance-amount)
	}

	return applied
}

func notifyTransfer(from, to interop.Hash160, amount int) {
	runtime.Notify("Transfer", topic(ledgerconst.TransferKind, from, to), payload(amount))
}

func notifySetAllowance(owner, spender interop.Hash160, amount int) {
	runtime.Notify("SetAllowance", topic(ledgerconst.SetAllowanceKind, owner, spender), payload(amount))
}

// topic is a kind tag followed by two account identities.
func topic(kind byte, owner, other interop.Hash160) []byte {
	res := append([]byte{kind}, owner...)
	return append(res, other...)
}

// payload is the amount as 8-byte little-endian unsigned integer.
func payload(amount int) []byte {
	raw := convert.ToBytes(amount)
	res := make([]byte, ledgerconst.PayloadSize)

	// raw is a minimal two's complement form, so values above 2^63-1 carry an
	// extra zero byte which is dropped here.
	for i := 0; i < len(raw) && i < ledgerconst.PayloadSize; i++ {
		res[i] = raw[i]
	}

	return res
}

func caller() interop.Hash160 {
	return runtime.GetScriptContainer().Sender
}

func isAmount(amount int) bool {
	return amount >= 0 && amount < std.Atoi(amountLimit, 10)
}

func checkAmount(amount int) {
	if !isAmount(amount) {
		panic("invalid amount")
	}
}

func checkAccount(acc interop.Hash160) {
	if len(acc) != interop.Hash160Len {
		panic("invalid account")
	}
}

func getMetadata(ctx storage.Context) Metadata {
	data := storage.Get(ctx, metadataKey)
	if data == nil {
		panic("ledger is not initialized")
	}

	return std.Deserialize(data.([]byte)).(Metadata)
}

// getAmount returns stored amount and a flag telling whether the entry exists.
func getAmount(ctx storage.Context, key []byte) (int, bool) {
	return common.GetSerializedInt(ctx, key)
}

// putAmount keeps amounts serialized, so zero values stay distinguishable
// from missing entries.
func putAmount(ctx storage.Context, key []byte, amount int) {
	common.SetSerialized(ctx, key, amount)
}

func balanceKey(acc interop.Hash160) []byte {
	return append([]byte{balancePrefix}, acc...)
}

func ownerKey(owner interop.Hash160) []byte {
	return append([]byte{ownerPrefix}, owner...)
}

func allowanceKey(owner, spender interop.Hash160) []byte {
	key := append([]byte{allowancePrefix}, owner...)
	return append(key, spender...)
}
