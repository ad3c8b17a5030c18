package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/nspcc-dev/ledger-contract/contracts/ledger/ledgerconst"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// DefaultPollInterval is used by Deploy when Prm.PollInterval is not set.
const DefaultPollInterval = time.Second

// ErrExecutableMismatch is returned by Deploy when the contract is already on the
// chain, but with different NEF.
var ErrExecutableMismatch = errors.New("contract is deployed with different executable")

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the Ledger contract deployment.
type Blockchain interface {
	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// ContractDeployer sends contract deployment transactions on behalf of
// Prm.Sender. It's implemented by management.Contract from neo-go RPC client.
type ContractDeployer interface {
	Deploy(exe *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// TokenPrm groups token metadata fixed at the Ledger contract deployment.
// Zero TokenPrm means contract defaults.
type TokenPrm struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply uint64
}

// LedgerContractPrm groups deployment parameters of the Ledger contract.
type LedgerContractPrm struct {
	Common CommonDeployPrm
	Token  TokenPrm

	// Disables creation of allowance records, SetAllowance of an owner without
	// one is a no-op.
	LegacyAllowance bool
}

// Prm groups all parameters of the Ledger contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Sends deployment transaction signed by Sender.
	Deployer ContractDeployer

	// Account sending the deployment transaction. The whole token supply is
	// credited to it.
	Sender util.Uint160

	// Interval between contract state requests while waiting for the
	// deployment. DefaultPollInterval is used if not set.
	PollInterval time.Duration

	Ledger LedgerContractPrm
}

// Address returns address of the Ledger contract deployed with the given
// parameters.
func (x Prm) Address() util.Uint160 {
	return state.CreateContractHash(x.Sender, x.Ledger.Common.NEF.Checksum, x.Ledger.Common.Manifest.Name)
}

// deployData returns data argument of the contract deployment.
func (x LedgerContractPrm) deployData() any {
	token := x.Token
	if token == (TokenPrm{}) {
		if !x.LegacyAllowance {
			return nil
		}

		token = TokenPrm{
			Name:        ledgerconst.DefaultName,
			Symbol:      ledgerconst.DefaultSymbol,
			Decimals:    ledgerconst.DefaultDecimals,
			TotalSupply: ledgerconst.DefaultTotalSupply,
		}
	}

	res := make([]any, ledgerconst.LegacyAllowanceIndex+1)
	res[ledgerconst.NameIndex] = token.Name
	res[ledgerconst.SymbolIndex] = token.Symbol
	res[ledgerconst.DecimalsIndex] = int64(token.Decimals)
	res[ledgerconst.TotalSupplyIndex] = new(big.Int).SetUint64(token.TotalSupply)
	res[ledgerconst.LegacyAllowanceIndex] = x.LegacyAllowance

	return res
}

// Deploy deploys the Ledger contract to the blockchain represented by given
// Prm.Blockchain and waits until it's available. Deploy returns address of
// the contract.
//
// Deploy does nothing if the contract is already deployed with the same
// executable, so it can be safely called repeatedly. Deploy aborts by context
// or when a fatal error occurs.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	addr := prm.Address()
	l := prm.Logger.With(zap.Stringer("address", addr))

	deployed, err := checkDeployed(prm.Blockchain, addr, prm.Ledger.Common.NEF.Checksum)
	if err != nil {
		return util.Uint160{}, err
	}
	if deployed {
		l.Info("Ledger contract is already deployed, skip")
		return addr, nil
	}

	l.Info("deploying Ledger contract...", zap.Bool("legacyAllowance", prm.Ledger.LegacyAllowance))

	txHash, vub, err := prm.Deployer.Deploy(&prm.Ledger.Common.NEF, &prm.Ledger.Common.Manifest, prm.Ledger.deployData())
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send Ledger contract deployment transaction: %w", err)
	}

	l.Info("Ledger contract deployment transaction sent, waiting for it to be accepted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	interval := prm.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return util.Uint160{}, fmt.Errorf("wait for Ledger contract deployment: %w", ctx.Err())
		case <-ticker.C:
		}

		deployed, err = checkDeployed(prm.Blockchain, addr, prm.Ledger.Common.NEF.Checksum)
		if err != nil {
			return util.Uint160{}, err
		}
		if deployed {
			l.Info("Ledger contract successfully deployed")
			return addr, nil
		}

		l.Debug("Ledger contract is not deployed yet, waiting...")
	}
}

// checkDeployed returns true if the contract with given address and NEF
// checksum is on the chain.
func checkDeployed(b Blockchain, addr util.Uint160, checksum uint32) (bool, error) {
	st, err := b.GetContractStateByHash(addr)
	if err != nil {
		if isErrContractNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get state of the contract %s: %w", addr.StringLE(), err)
	}

	if st.NEF.Checksum != checksum {
		return false, fmt.Errorf("%w: checksum %d instead of %d", ErrExecutableMismatch, st.NEF.Checksum, checksum)
	}

	return true, nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
