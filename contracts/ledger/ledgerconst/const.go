/*
Package ledgerconst contains constants shared by the Ledger contract and its
Go clients: notification names, kind tags and sizes of the notification
fields, default token metadata and layout of the deployment data.
*/
package ledgerconst

// Notification names emitted by the Ledger contract.
const (
	TransferNotification     = "Transfer"
	SetAllowanceNotification = "SetAllowance"
)

// Kind tags opening every notification topic.
const (
	TransferKind     byte = 0
	SetAllowanceKind byte = 1
)

const (
	// AccountSize is a size of the account identity in bytes.
	AccountSize = 20

	// TopicSize is a size of the notification topic: kind tag followed by two
	// account identities.
	TopicSize = 1 + 2*AccountSize

	// PayloadSize is a size of the notification payload holding the amount as
	// little-endian 64-bit unsigned integer.
	PayloadSize = 8
)

// Token metadata used when deployment data is omitted.
const (
	DefaultName        = "Moon Rock"
	DefaultSymbol      = "MOON"
	DefaultDecimals    = 8
	DefaultTotalSupply = 10_000_000_000_000_000
)

// Indices of the deployment data items. LegacyAllowanceIndex item is optional.
const (
	NameIndex = iota
	SymbolIndex
	DecimalsIndex
	TotalSupplyIndex
	LegacyAllowanceIndex
)
