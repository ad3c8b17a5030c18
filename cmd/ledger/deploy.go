package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/ledger-contract/deploy"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

func runDeploy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	common := registerCommonFlags(fs)
	walletPath := fs.String("wallet", "", "Path to the NEP-6 wallet of the deployer")
	accountFlag := fs.String("account", "", "Deployer account address, default wallet account if omitted")
	nefPath := fs.String("nef", "", "Path to the compiled contract")
	manifestPath := fs.String("manifest", "", "Path to the contract manifest")
	name := fs.String("name", "", "Token name, contract default if omitted with symbol")
	symbol := fs.String("symbol", "", "Token symbol")
	decimals := fs.Uint("decimals", 0, "Token decimals")
	supply := fs.Uint64("supply", 0, "Total supply")
	legacy := fs.Bool("legacy-allowance", false, "Disable creation of allowance records")
	timeout := fs.Duration("timeout", time.Minute, "Deployment timeout")

	_ = fs.Parse(args)

	if err := common.check(); err != nil {
		return err
	}

	switch {
	case *walletPath == "":
		return errors.New("missing wallet")
	case *nefPath == "":
		return errors.New("missing NEF file")
	case *manifestPath == "":
		return errors.New("missing manifest file")
	case *decimals > 255:
		return fmt.Errorf("decimals %d out of range", *decimals)
	}

	var prm deploy.Prm

	err := readContract(&prm.Ledger.Common, *nefPath, *manifestPath)
	if err != nil {
		return err
	}

	prm.Ledger.Token = deploy.TokenPrm{
		Name:        *name,
		Symbol:      *symbol,
		Decimals:    uint8(*decimals),
		TotalSupply: *supply,
	}
	prm.Ledger.LegacyAllowance = *legacy

	acc, err := openAccount(*walletPath, *accountFlag)
	if err != nil {
		return err
	}

	prm.Logger, err = newLogger(*common.debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = prm.Logger.Sync() }()

	b, err := newRemoteBlockChain(ctx, *common.rpc)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	act, err := actor.NewSimple(b.rpc, acc)
	if err != nil {
		return fmt.Errorf("init transaction sender from deployer account: %w", err)
	}

	prm.Blockchain = b.rpc
	prm.Deployer = management.New(act)
	prm.Sender = acc.ScriptHash()

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	addr, err := deploy.Deploy(ctx, prm)
	if err != nil {
		return fmt.Errorf("deploy Ledger contract: %w", err)
	}

	prm.Logger.Info("Ledger contract is ready", zap.Stringer("address", addr))

	return nil
}

func readContract(dst *deploy.CommonDeployPrm, nefPath, manifestPath string) error {
	data, err := os.ReadFile(nefPath)
	if err != nil {
		return fmt.Errorf("read NEF file: %w", err)
	}

	dst.NEF, err = nef.FileFromBytes(data)
	if err != nil {
		return fmt.Errorf("decode NEF file: %w", err)
	}

	data, err = os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest file: %w", err)
	}

	err = json.Unmarshal(data, &dst.Manifest)
	if err != nil {
		return fmt.Errorf("decode manifest file: %w", err)
	}

	return nil
}

// openAccount reads the wallet and decrypts the account with password from
// LEDGER_WALLET_PASSWORD environment variable.
func openAccount(walletPath, accountAddr string) (*wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(walletPath)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var acc *wallet.Account
	if accountAddr != "" {
		u, err := parseAccount(accountAddr)
		if err != nil {
			return nil, err
		}
		acc = w.GetAccount(u)
	} else {
		acc = w.GetAccount(w.GetChangeAddress())
	}

	if acc == nil {
		return nil, errors.New("account not found in the wallet")
	}

	err = acc.Decrypt(os.Getenv("LEDGER_WALLET_PASSWORD"), w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account: %w", err)
	}

	return acc, nil
}
