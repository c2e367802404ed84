// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/priorq/priorq"
)

// genesis is the bootstrap configuration of a fresh registry.
type genesis struct {
	Owner      priorq.Address
	Controller priorq.Address
	Accounts   []priorq.Address
}

type genesisFile struct {
	Owner      string   `yaml:"owner"`
	Controller string   `yaml:"controller"`
	Accounts   []string `yaml:"accounts"`
}

func loadGenesis(path string) (*genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read genesis file")
	}

	var file genesisFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WithMessage(err, "decode genesis file")
	}
	if file.Owner == "" {
		return nil, errors.New("genesis: owner required")
	}

	var gene genesis
	if gene.Owner, err = priorq.ParseAddress(file.Owner); err != nil {
		return nil, errors.WithMessage(err, "genesis: owner")
	}
	if file.Controller != "" {
		if gene.Controller, err = priorq.ParseAddress(file.Controller); err != nil {
			return nil, errors.WithMessage(err, "genesis: controller")
		}
	}
	for _, account := range file.Accounts {
		addr, err := priorq.ParseAddress(account)
		if err != nil {
			return nil, errors.WithMessagef(err, "genesis: account %q", account)
		}
		gene.Accounts = append(gene.Accounts, addr)
	}
	return &gene, nil
}
