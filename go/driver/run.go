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
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Fantom-foundation/Turandot/go/turandot"
	"github.com/urfave/cli/v2"
)

var RunCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Run a code snippet on an interpreter",
	ArgsUsage: "<code>",
	Flags: []cli.Flag{
		interpreterFlag,
		gasFlag,
		inputFlag,
		observeFlag,
	},
}

var (
	interpreterFlag = &cli.StringFlag{
		Name:  "interpreter",
		Usage: "the interpreter running the code",
		Value: "efvm",
	}
	gasFlag = &cli.Int64Flag{
		Name:  "gas",
		Usage: "the gas limit of the execution",
		Value: 1_000_000,
	}
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "the input data passed to the code, as a hex string",
	}
	observeFlag = &cli.BoolFlag{
		Name:  "observe",
		Usage: "print every executed instruction to stdout",
	}
	runsFlag = &cli.IntFlag{
		Name:  "runs",
		Usage: "the number of executions to measure",
		Value: 100,
	}
)

// The fixed addresses used for running snippets: the sender issues the
// transactions, the code address holds the executed code.
var (
	senderAddress = turandot.Address{1}
	codeAddress   = turandot.Address{2}
)

func doRun(context *cli.Context) error {
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

	variant := context.String("interpreter")
	if context.Bool("observe") {
		variant = variant + "-logging"
	}
	processor, err := getProcessor(variant)
	if err != nil {
		return err
	}

	state := newInMemoryState()
	state.SetCode(codeAddress, code)

	receipt, err := runTransaction(processor, state, input, turandot.Gas(context.Int64("gas")))
	if err != nil {
		return err
	}

	fmt.Printf("success:  %t\n", receipt.Success)
	fmt.Printf("output:   0x%x\n", receipt.Output)
	fmt.Printf("gas used: %d\n", receipt.GasUsed)
	for _, log := range receipt.Logs {
		fmt.Printf("log: address %v, topics %v, data 0x%x\n", log.Address, log.Topics, log.Data)
	}
	return nil
}

// getProcessor resolves the named interpreter variant and wraps it into the
// transaction processor driving the executions.
func getProcessor(variant string) (turandot.Processor, error) {
	interpreter, err := turandot.NewInterpreter(variant)
	if err != nil {
		return nil, fmt.Errorf("failed to load interpreter %s: %w", variant, err)
	}
	processor := turandot.GetProcessor("calaf", interpreter)
	if processor == nil {
		return nil, fmt.Errorf("no processor registered")
	}
	return processor, nil
}

// runTransaction sends a transaction calling the code address with the given
// input to the processor, using the current nonce of the sender.
func runTransaction(
	processor turandot.Processor,
	state *inMemoryState,
	input turandot.Data,
	gas turandot.Gas,
) (turandot.Receipt, error) {
	transaction := turandot.Transaction{
		Sender:    senderAddress,
		Recipient: &codeAddress,
		Nonce:     state.GetNonce(senderAddress),
		Input:     input,
		GasLimit:  gas,
	}
	blockParams := turandot.BlockParameters{
		Revision: turandot.R14_Prague,
	}
	receipt, err := processor.Run(blockParams, transaction, state)
	if err != nil {
		return turandot.Receipt{}, fmt.Errorf("failed to process transaction: %w", err)
	}
	return receipt, nil
}

// parseCode interprets the given argument as a hex string or, when prefixed
// with an @, as the path of a file holding the code. Code files may contain
// either the raw binary code or its hex encoding.
func parseCode(argument string) (turandot.Code, error) {
	if strings.HasPrefix(argument, "@") {
		content, err := os.ReadFile(strings.TrimPrefix(argument, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read code file: %w", err)
		}
		if len(content) >= 2 && content[0] == 0xEF {
			return content, nil
		}
		return parseHex(strings.TrimSpace(string(content)))
	}
	return parseHex(argument)
}

func parseHex(text string) ([]byte, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(text, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return data, nil
}
