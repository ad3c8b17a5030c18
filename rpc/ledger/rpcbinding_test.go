package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err error
	res *result.Invoke

	calls []string

	records    []stackitem.Item
	traversed  int
	terminated []uuid.UUID
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	t.calls = append(t.calls, operation)
	return t.res, t.err
}

func (t *testInv) CallAndExpandIterator(contract util.Uint160, operation string, i int, params ...any) (*result.Invoke, error) {
	t.calls = append(t.calls, operation)
	return t.res, t.err
}

func (t *testInv) TraverseIterator(_ uuid.UUID, _ *result.Iterator, num int) ([]stackitem.Item, error) {
	end := t.traversed + num
	if end > len(t.records) {
		end = len(t.records)
	}
	res := t.records[t.traversed:end]
	t.traversed = end
	return res, nil
}

func (t *testInv) TerminateSession(id uuid.UUID) error {
	t.terminated = append(t.terminated, id)
	return nil
}

func halt(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{
		State: "HALT",
		Stack: items,
	}
}

func TestReaderErrors(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.err = errors.New("bad")
	_, err := r.BalanceOf(util.Uint160{})
	require.Error(t, err)
	_, err = r.Token()
	require.Error(t, err)

	ti.err = nil
	ti.res = &result.Invoke{State: "FAULT", FaultException: "ledger is not initialized"}
	_, err = r.TotalSupply()
	require.Error(t, err)

	ti.res = halt(stackitem.Make([]stackitem.Item{}))
	_, err = r.Token()
	require.Error(t, err)

	ti.res = halt(stackitem.Make([]stackitem.Item{
		stackitem.Make("Moon Rock"),
		stackitem.Make([]byte{0xff}),
		stackitem.Make(8),
		stackitem.Make(100),
	}))
	_, err = r.Token()
	require.ErrorContains(t, err, "field Symbol")

	ti.res = halt(stackitem.Make([]stackitem.Item{}))
	_, err = r.Allowance(util.Uint160{1}, util.Uint160{2})
	require.Error(t, err)
}

func TestReader(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.Make("Moon Rock"),
		stackitem.Make("MOON"),
		stackitem.Make(8),
		stackitem.Make(10_000_000_000_000_000),
	}))
	meta, err := r.Token()
	require.NoError(t, err)
	require.Equal(t, &LedgerMetadata{
		Name:        "Moon Rock",
		Symbol:      "MOON",
		Decimals:    big.NewInt(8),
		TotalSupply: big.NewInt(10_000_000_000_000_000),
	}, meta)

	ti.res = halt(stackitem.Make("MOON"))
	symbol, err := r.Symbol()
	require.NoError(t, err)
	require.Equal(t, "MOON", symbol)

	ti.res = halt(stackitem.Make(42))
	balance, err := r.BalanceOf(util.Uint160{4})
	require.NoError(t, err)
	require.EqualValues(t, 42, balance.Int64())

	allowance, err := r.Allowance(util.Uint160{4}, util.Uint160{5})
	require.NoError(t, err)
	require.EqualValues(t, 42, allowance.Int64())

	require.Equal(t, []string{"token", "symbol", "balanceOf", "allowance"}, ti.calls)
}

func TestListBalances(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	_, err := r.ListBalances(0)
	require.Error(t, err)

	sessionID := uuid.New()
	iteratorID := uuid.New()
	ti.res = &result.Invoke{
		State:   "HALT",
		Session: sessionID,
		Stack: []stackitem.Item{
			stackitem.NewInterop(result.Iterator{ID: &iteratorID}),
		},
	}

	var expected []*BalanceRecord
	for i := 0; i < 5; i++ {
		acc := util.Uint160{byte(i + 1)}
		ti.records = append(ti.records, stackitem.NewStruct([]stackitem.Item{
			stackitem.Make(acc.BytesBE()),
			stackitem.Make(i * 10),
		}))
		expected = append(expected, &BalanceRecord{Account: acc, Amount: big.NewInt(int64(i * 10))})
	}

	res, err := r.ListBalances(2)
	require.NoError(t, err)
	require.Equal(t, expected, res)
	require.Equal(t, []uuid.UUID{sessionID}, ti.terminated)

	ti.records = []stackitem.Item{stackitem.Make([]stackitem.Item{stackitem.Make([]byte{1, 2})})}
	ti.traversed = 0
	_, err = r.ListBalances(2)
	require.Error(t, err)
	require.Len(t, ti.terminated, 2)
}

type testAct struct {
	testInv

	method string
	params []any
}

func (t *testAct) MakeCall(_ util.Uint160, method string, params ...any) (*transaction.Transaction, error) {
	t.method, t.params = method, params
	return new(transaction.Transaction), nil
}

func (t *testAct) MakeRun([]byte) (*transaction.Transaction, error) {
	return nil, errors.New("unexpected run")
}

func (t *testAct) MakeUnsignedCall(_ util.Uint160, method string, _ []transaction.Attribute, params ...any) (*transaction.Transaction, error) {
	t.method, t.params = method, params
	return new(transaction.Transaction), nil
}

func (t *testAct) MakeUnsignedRun([]byte, []transaction.Attribute) (*transaction.Transaction, error) {
	return nil, errors.New("unexpected run")
}

func (t *testAct) SendCall(_ util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	t.method, t.params = method, params
	return util.Uint256{1}, 100, nil
}

func (t *testAct) SendRun([]byte) (util.Uint256, uint32, error) {
	return util.Uint256{}, 0, errors.New("unexpected run")
}

func TestContract(t *testing.T) {
	ta := new(testAct)
	c := New(ta, util.Uint160{1, 2, 3})

	from, to := util.Uint160{4}, util.Uint160{5}
	amount := big.NewInt(17)

	h, vub, err := c.Transfer(to, amount)
	require.NoError(t, err)
	require.Equal(t, util.Uint256{1}, h)
	require.EqualValues(t, 100, vub)
	require.Equal(t, "transfer", ta.method)
	require.Equal(t, []any{to, amount}, ta.params)

	_, err = c.SetAllowanceTransaction(to, amount)
	require.NoError(t, err)
	require.Equal(t, "setAllowance", ta.method)
	require.Equal(t, []any{to, amount}, ta.params)

	_, err = c.TransferFromUnsigned(from, to, amount)
	require.NoError(t, err)
	require.Equal(t, "transferFrom", ta.method)
	require.Equal(t, []any{from, to, amount}, ta.params)

	_, _, err = c.Update([]byte{1}, []byte{2}, nil)
	require.NoError(t, err)
	require.Equal(t, "update", ta.method)
	require.Equal(t, []any{[]byte{1}, []byte{2}, nil}, ta.params)
}
