// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package efvm

import (
	"fmt"
	"io"
	"os"
)

// loggingRunner is a runner observing the execution of all instructions and
// printing them to the configured writer, one line per executed instruction.
// The zero value writes to stdout.
type loggingRunner struct {
	log io.Writer
}

func (l loggingRunner) run(c *context) (status, error) {
	log := l.log
	if log == nil {
		log = os.Stdout
	}
	status := statusRunning
	for status == statusRunning {
		// log format: <op>, <gas>, <top-of-stack>
		if int(c.pc) < len(c.code) {
			top := "-empty-"
			if c.stack.len() > 0 {
				top = c.stack.peek().ToBig().String()
			}
			_, err := fmt.Fprintf(log, "%v, %d, %v\n", c.code[c.pc].opcode, c.gas, top)
			if err != nil {
				return statusFailed, fmt.Errorf("failed to log instruction: %v", err)
			}
		}
		var err error
		status, err = step(c)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}
