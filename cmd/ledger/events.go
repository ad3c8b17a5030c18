package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ledger-contract/rpc/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

func runEvents(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	common := registerCommonFlags(fs)
	txFlag := fs.String("tx", "", "Hash of the transaction (LE hex)")
	contractFlag := fs.String("contract", "", "Ledger contract address or script hash, all contracts if omitted")

	_ = fs.Parse(args)

	if err := common.check(); err != nil {
		return err
	}
	if *txFlag == "" {
		return errors.New("missing transaction hash")
	}

	tx, err := util.Uint256DecodeStringLE(*txFlag)
	if err != nil {
		return fmt.Errorf("invalid transaction hash: %w", err)
	}

	var contract *util.Uint160
	if *contractFlag != "" {
		u, err := parseAccount(*contractFlag)
		if err != nil {
			return err
		}
		contract = &u
	}

	l, err := newLogger(*common.debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	b, err := newRemoteBlockChain(ctx, *common.rpc)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	appLog, err := b.applicationLog(tx, contract)
	if err != nil {
		return err
	}

	var n int
	for i, ex := range appLog.Executions {
		l.Debug("processing execution", zap.Int("index", i), zap.Stringer("state", ex.VMState))

		for j, e := range ex.Events {
			ev, err := ledger.DecodeNotification(e.Name, e.Item)
			if err != nil {
				l.Debug("skip notification", zap.Int("index", j), zap.String("name", e.Name), zap.Error(err))
				continue
			}

			logEvent(l.With(zap.Stringer("contract", e.ScriptHash)), ev)
			n++
		}
	}

	l.Info("transaction processed", zap.Stringer("tx", tx), zap.Int("events", n))

	return nil
}

func logEvent(l *zap.Logger, ev any) {
	switch ev := ev.(type) {
	case *ledger.TransferEvent:
		l.Info("transfer",
			zap.Stringer("from", ev.From),
			zap.Stringer("to", ev.To),
			zap.Uint64("amount", ev.Amount))
	case *ledger.SetAllowanceEvent:
		l.Info("set allowance",
			zap.Stringer("owner", ev.Owner),
			zap.Stringer("spender", ev.Spender),
			zap.Uint64("amount", ev.Amount))
	}
}

func runBalances(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("balances", flag.ExitOnError)
	common := registerCommonFlags(fs)
	contractFlag := fs.String("contract", "", "Ledger contract address or script hash")
	batch := fs.Int("batch", 100, "Number of records per iterator request")

	_ = fs.Parse(args)

	if err := common.check(); err != nil {
		return err
	}
	if *contractFlag == "" {
		return errors.New("missing Ledger contract")
	}

	contract, err := parseAccount(*contractFlag)
	if err != nil {
		return err
	}

	l, err := newLogger(*common.debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	b, err := newRemoteBlockChain(ctx, *common.rpc)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	r, err := b.ledgerReader(contract)
	if err != nil {
		return err
	}

	meta, err := r.Token()
	if err != nil {
		return fmt.Errorf("get token metadata: %w", err)
	}

	l.Info("token", zap.String("name", meta.Name), zap.String("symbol", meta.Symbol),
		zap.Stringer("decimals", meta.Decimals), zap.Stringer("total supply", meta.TotalSupply))

	records, err := r.ListBalances(*batch)
	if err != nil {
		return fmt.Errorf("list balances: %w", err)
	}

	for _, rec := range records {
		l.Info("balance", zap.Stringer("account", rec.Account), zap.Stringer("amount", rec.Amount))
	}

	err = checkSupply(records, meta.TotalSupply)
	if err != nil {
		return err
	}

	l.Info("balances match total supply", zap.Int("accounts", len(records)))

	return nil
}

// checkSupply returns an error if balances don't sum up to the total supply.
func checkSupply(records []*ledger.BalanceRecord, total *big.Int) error {
	sum := new(big.Int)
	for _, rec := range records {
		sum.Add(sum, rec.Amount)
	}

	if sum.Cmp(total) != 0 {
		return fmt.Errorf("sum of balances %s differs from total supply %s", sum, total)
	}

	return nil
}
