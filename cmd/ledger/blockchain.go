package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/ledger-contract/rpc/ledger"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// wrapper over rpcNeo providing Ledger services needed for current command.
type remoteBlockchain struct {
	rpc *rpcclient.Client
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within 15
// timeout.
func newRemoteBlockChain(ctx context.Context, blockChainRPCEndpoint string) (*remoteBlockchain, error) {
	c, err := rpcclient.New(ctx, blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init RPC client: %w", err)
	}

	return &remoteBlockchain{
		rpc: c,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// ledgerReader returns reader of the Ledger contract deployed at the given
// address. Contract presence is checked.
func (x *remoteBlockchain) ledgerReader(contract util.Uint160) (*ledger.ContractReader, error) {
	_, err := x.contractState(contract)
	if err != nil {
		return nil, err
	}

	return ledger.NewReader(invoker.New(x.rpc, nil), contract), nil
}

func (x *remoteBlockchain) contractState(contract util.Uint160) (*state.Contract, error) {
	st, err := x.rpc.GetContractStateByHash(contract)
	if err != nil {
		return nil, fmt.Errorf("get state of the requested contract by hash '%s': %w", contract.StringLE(), err)
	}

	return st, nil
}

// applicationLog returns application log of the transaction. If contract is
// set, only notifications thrown by it are kept.
func (x *remoteBlockchain) applicationLog(tx util.Uint256, contract *util.Uint160) (*result.ApplicationLog, error) {
	appLog, err := x.rpc.GetApplicationLog(tx, nil)
	if err != nil {
		return nil, fmt.Errorf("get application log of the transaction '%s': %w", tx.StringLE(), err)
	}

	if contract != nil {
		filterEvents(appLog, *contract)
	}

	return appLog, nil
}

// filterEvents drops notifications thrown by any contract other than the given
// one from all executions of the application log.
func filterEvents(appLog *result.ApplicationLog, contract util.Uint160) {
	for i := range appLog.Executions {
		events := appLog.Executions[i].Events[:0]
		for _, e := range appLog.Executions[i].Events {
			if e.ScriptHash.Equals(contract) {
				events = append(events, e)
			}
		}
		appLog.Executions[i].Events = events
	}
}
