// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/priorq/api"
	"github.com/vechain/priorq/event"
	"github.com/vechain/priorq/log"
	"github.com/vechain/priorq/metrics"
	"github.com/vechain/priorq/registry"
	"github.com/vechain/priorq/state"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "PriorQ",
		Usage:     "Registry with time-accrued balances and a stake-escrowed wait list",
		Copyright: "2026 The VeChainThor developers",
		Flags: []cli.Flag{
			genesisFlag,
			eventDBFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	genesisPath := ctx.String(genesisFlag.Name)
	if genesisPath == "" {
		cli.ShowAppHelp(ctx) //nolint:errcheck
		return errors.New("genesis flag not specified")
	}
	gene, err := loadGenesis(genesisPath)
	if err != nil {
		return err
	}

	eventDB, err := openEventDB(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	notifier := event.Multi{
		event.NotifierFunc(func(events []event.Event) error {
			for _, ev := range events {
				logger.Debug("event recorded", "seq", ev.Seq, "name", ev.Name, "account", ev.Account)
			}
			return nil
		}),
		eventDB,
	}
	reg, err := registry.New(state.New(), notifier, gene.Owner)
	if err != nil {
		return errors.WithMessage(err, "create registry")
	}
	if err := bootstrap(reg, gene); err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.WithMessage(err, "start metrics server")
		}
		logger.Info("metrics server started", "url", url)
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	handler := api.New(reg, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	apiURL, apiClose, err := startAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); apiClose() }()

	printStartupMessage(gene, eventDB.Path(), apiURL)

	<-handleExitSignal().Done()
	return nil
}

// bootstrap applies the genesis config to a fresh registry.
func bootstrap(reg *registry.Registry, gene *genesis) error {
	if !gene.Controller.IsZero() {
		if err := reg.SetController(gene.Owner, gene.Controller); err != nil {
			return errors.WithMessage(err, "set controller")
		}
	}
	now := uint64(time.Now().Unix()) // #nosec G115
	for _, account := range gene.Accounts {
		if err := reg.Register(account, now); err != nil {
			return errors.WithMessagef(err, "register account %v", account)
		}
	}
	return nil
}

func printStartupMessage(gene *genesis, eventDBPath string, apiURL string) {
	fmt.Printf(`Starting %v
    Owner        [ %v ]
    Controller   [ %v ]
    Accounts     [ %v ]
    Event DB     [ %v ]
    API portal   [ %v ]
`,
		common.MakeName("PriorQ", fullVersion()),
		gene.Owner,
		gene.Controller,
		len(gene.Accounts),
		eventDBPath,
		apiURL)
}
