/*
Package ledger implements Ledger contract, a fungible token with delegated
spending.

Ledger contract tracks balances of a single divisible asset. The whole supply
is credited to the deployer and is never minted or burnt afterwards, so the sum
of all balances always equals the total supply. Owners move funds directly
with Transfer or authorize a spender to move up to a fixed amount with
SetAllowance, the spender then uses TransferFrom.

Business rule violations (not enough assets, not enough allowance, missing
records) never fault the transaction, the call is settled as a no-op instead.
Notifications don't prove the state change by themselves: Transfer
notification of a plain transfer carries the requested amount even if the
sender had not enough assets, TransferFrom and SetAllowance report zero or
nothing on rejection. Observers must query balances to confirm the effect.

Malformed arguments (accounts that are not 20 bytes long, amounts outside of
unsigned 64-bit range) fault the transaction.

# Deployment

Deployment data is either nil (token named "Moon Rock", "MOON" symbol,
8 decimals, 10^16 total supply) or an array:

	[name string, symbol string, decimals int, totalSupply int, legacyAllowance bool]

Trailing legacyAllowance item is optional. In legacy allowance mode an owner
that has never had allowance record can't create one, so SetAllowance is
a no-op for such owners and produces no notification.

# Contract notifications

Both notifications share the layout: topic is a kind tag (0 for Transfer, 1 for
SetAllowance) followed by two 20-byte account identities, payload is the amount
as 8-byte little-endian unsigned integer.

Transfer notification. Topic accounts are the owner of the funds and the
recipient.

	Transfer:
	  - name: topic
	    type: ByteArray
	  - name: payload
	    type: ByteArray

SetAllowance notification. Topic accounts are the owner of the funds and the
spender.

	SetAllowance:
	  - name: topic
	    type: ByteArray
	  - name: payload
	    type: ByteArray
*/
package ledger

/*
Contract storage model.

# Summary
Key-value storage format:
 - "token" -> std.Serialize(Metadata)
   token metadata, written once at deployment
 - "legacyAllowance" -> int
   present only in legacy allowance mode
 - 'b'<interop.Hash160> -> std.Serialize(int)
   balance of the account, zero balances are kept
 - 'o'<interop.Hash160> -> int
   marker of the owner's allowance record
 - 'a'<owner interop.Hash160><spender interop.Hash160> -> std.Serialize(int)
   amount spender may move out of the owner's balance
*/
