package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

const usage = `Usage: ledger <command> [flags]

Commands:
  events    print Ledger notifications thrown by the transaction
  balances  list all balance records and check them against total supply
  deploy    deploy Ledger contract from the wallet account

Run 'ledger <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error

	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "events":
		err = runEvents(ctx, args)
	case "balances":
		err = runBalances(ctx, args)
	case "deploy":
		err = runDeploy(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// parseAccount accepts both Neo address and LE hex script hash.
func parseAccount(s string) (util.Uint160, error) {
	if u, err := address.StringToUint160(s); err == nil {
		return u, nil
	}

	u, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid account '%s': neither address nor script hash", s)
	}

	return u, nil
}

// commonFlags are shared by all commands.
type commonFlags struct {
	rpc   *string
	debug *bool
}

func registerCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		rpc:   fs.String("rpc", "", "Network address of the Neo RPC server"),
		debug: fs.Bool("debug", false, "Enable debug logs"),
	}
}

func (x commonFlags) check() error {
	if *x.rpc == "" {
		return errors.New("missing Neo RPC endpoint")
	}
	return nil
}
