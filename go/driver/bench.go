// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"time"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
)

var BenchCmd = cli.Command{
	Action:    doBench,
	Name:      "bench",
	Usage:     "Measure the execution rate of a code snippet",
	ArgsUsage: "<code>",
	Flags: []cli.Flag{
		interpreterFlag,
		gasFlag,
		inputFlag,
		runsFlag,
	},
}

func doBench(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one code argument, got %d", context.Args().Len())
	}
	code, err := parseCode(context.Args().Get(0))
	if err != nil {
		return err
	}
	input, err := parseHex(context.String("input"))
	if err != nil {
		return err
	}
	runs := context.Int("runs")
	if runs <= 0 {
		return fmt.Errorf("invalid number of runs: %d", runs)
	}

	processor, err := getProcessor(context.String("interpreter"))
	if err != nil {
		return err
	}

	state := newInMemoryState()
	state.SetCode(codeAddress, code)
	gas := turandot.Gas(context.Int64("gas"))

	// One warm-up run fills the conversion caches before measuring.
	if _, err := runTransaction(processor, state, input, gas); err != nil {
		return err
	}

	start := time.Now()
	var gasUsed turandot.Gas
	for i := 0; i < runs; i++ {
		receipt, err := runTransaction(processor, state, input, gas)
		if err != nil {
			return err
		}
		gasUsed += receipt.GasUsed
	}
	duration := time.Since(start)

	rate := float64(runs) / duration.Seconds()
	gasRate := float64(gasUsed) / duration.Seconds()
	fmt.Printf("%d runs in %v\n", runs, duration)
	fmt.Printf("~%s transactions per second\n", unitconv.FormatPrefix(rate, unitconv.SI, 0))
	fmt.Printf("~%s gas per second\n", unitconv.FormatPrefix(gasRate, unitconv.SI, 0))
	return nil
}
