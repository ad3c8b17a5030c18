package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nspcc-dev/ledger-contract/contracts/ledger/ledgerconst"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

var (
	// ErrInvalidTopic is returned when notification topic has unexpected
	// size.
	ErrInvalidTopic = errors.New("invalid notification topic")

	// ErrInvalidPayload is returned when notification payload has unexpected
	// size.
	ErrInvalidPayload = errors.New("invalid notification payload")

	// ErrUnexpectedKind is returned when notification topic is tagged with
	// a kind other than the decoded event expects.
	ErrUnexpectedKind = errors.New("unexpected notification kind")

	// ErrUnknownNotification is returned by DecodeNotification for names the
	// contract never throws.
	ErrUnknownNotification = errors.New("unknown notification")
)

// TransferEvent represents "Transfer" event emitted by the contract. Amount is
// the requested one, it doesn't prove that the funds were moved.
type TransferEvent struct {
	From   util.Uint160
	To     util.Uint160
	Amount uint64
}

// SetAllowanceEvent represents "SetAllowance" event emitted by the contract.
type SetAllowanceEvent struct {
	Owner   util.Uint160
	Spender util.Uint160
	Amount  uint64
}

// EncodeTopic returns notification topic: kind tag followed by two accounts.
func EncodeTopic(kind byte, owner, other util.Uint160) []byte {
	res := make([]byte, 0, ledgerconst.TopicSize)
	res = append(res, kind)
	res = append(res, owner.BytesBE()...)
	return append(res, other.BytesBE()...)
}

// EncodePayload returns notification payload: amount as little-endian uint64.
func EncodePayload(amount uint64) []byte {
	res := make([]byte, ledgerconst.PayloadSize)
	binary.LittleEndian.PutUint64(res, amount)
	return res
}

// DecodeTopic is an inverse of EncodeTopic.
func DecodeTopic(topic []byte) (kind byte, owner, other util.Uint160, err error) {
	if len(topic) != ledgerconst.TopicSize {
		return 0, owner, other, fmt.Errorf("%w: length %d", ErrInvalidTopic, len(topic))
	}

	owner, err = util.Uint160DecodeBytesBE(topic[1 : 1+ledgerconst.AccountSize])
	if err != nil {
		return 0, owner, other, fmt.Errorf("%w: %v", ErrInvalidTopic, err)
	}

	other, err = util.Uint160DecodeBytesBE(topic[1+ledgerconst.AccountSize:])
	if err != nil {
		return 0, owner, other, fmt.Errorf("%w: %v", ErrInvalidTopic, err)
	}

	return topic[0], owner, other, nil
}

// DecodePayload is an inverse of EncodePayload.
func DecodePayload(payload []byte) (uint64, error) {
	if len(payload) != ledgerconst.PayloadSize {
		return 0, fmt.Errorf("%w: length %d", ErrInvalidPayload, len(payload))
	}

	return binary.LittleEndian.Uint64(payload), nil
}

// DecodeNotification decodes notification with the given name and returns
// *TransferEvent or *SetAllowanceEvent. The topic kind tag must match the name.
func DecodeNotification(name string, item *stackitem.Array) (any, error) {
	switch name {
	case ledgerconst.TransferNotification:
		ev := new(TransferEvent)
		if err := ev.FromStackItem(item); err != nil {
			return nil, err
		}
		return ev, nil
	case ledgerconst.SetAllowanceNotification:
		ev := new(SetAllowanceEvent)
		if err := ev.FromStackItem(item); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownNotification, name)
	}
}

// FromStackItem converts provided [stackitem.Array] to TransferEvent or
// returns an error if it's not possible to do to so.
func (e *TransferEvent) FromStackItem(item *stackitem.Array) error {
	kind, from, to, amount, err := decodeFields(item)
	if err != nil {
		return err
	}
	if kind != ledgerconst.TransferKind {
		return fmt.Errorf("%w: %d", ErrUnexpectedKind, kind)
	}

	e.From, e.To, e.Amount = from, to, amount
	return nil
}

// FromStackItem converts provided [stackitem.Array] to SetAllowanceEvent or
// returns an error if it's not possible to do to so.
func (e *SetAllowanceEvent) FromStackItem(item *stackitem.Array) error {
	kind, owner, spender, amount, err := decodeFields(item)
	if err != nil {
		return err
	}
	if kind != ledgerconst.SetAllowanceKind {
		return fmt.Errorf("%w: %d", ErrUnexpectedKind, kind)
	}

	e.Owner, e.Spender, e.Amount = owner, spender, amount
	return nil
}

func decodeFields(item *stackitem.Array) (kind byte, owner, other util.Uint160, amount uint64, err error) {
	if item == nil {
		return 0, owner, other, 0, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return 0, owner, other, 0, errors.New("not an array")
	}
	if len(arr) != 2 {
		return 0, owner, other, 0, errors.New("wrong number of structure elements")
	}

	topic, err := arr[0].TryBytes()
	if err != nil {
		return 0, owner, other, 0, fmt.Errorf("field topic: %w", err)
	}
	kind, owner, other, err = DecodeTopic(topic)
	if err != nil {
		return 0, owner, other, 0, fmt.Errorf("field topic: %w", err)
	}

	payload, err := arr[1].TryBytes()
	if err != nil {
		return 0, owner, other, 0, fmt.Errorf("field payload: %w", err)
	}
	amount, err = DecodePayload(payload)
	if err != nil {
		return 0, owner, other, 0, fmt.Errorf("field payload: %w", err)
	}

	return kind, owner, other, amount, nil
}
