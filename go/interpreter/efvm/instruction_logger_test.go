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
	"bytes"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/Fantom-foundation/Turandot/go/turandot"
)

func TestLoggingRunner_ExecutesCodeAndLogs(t *testing.T) {
	tests := map[string]struct {
		code []Instruction
		want string
	}{
		"empty": {},
		"stop": {
			code: []Instruction{{STOP, 0}},
			want: "STOP, 10, -empty-\n",
		},
		"multiple codes": {
			code: []Instruction{{PUSH4, 0}, {DATA, 1}, {STOP, 0}},
			want: "PUSH4, 10, -empty-\nSTOP, 7, 1\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			params := turandot.Parameters{
				Static: true,
				Gas:    10,
			}
			buffer := bytes.NewBuffer([]byte{})
			config := interpreterConfig{
				runner: loggingRunner{log: buffer},
			}
			_, err := run(config, params, test.code, nil)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if got := buffer.String(); got != test.want {
				t.Errorf("unexpected log: want %q, got %q", test.want, got)
			}
		})
	}
}

func TestLoggingRunner_ZeroValueWritesToStdout(t *testing.T) {
	params := turandot.Parameters{Gas: 10}
	code := Code{{STOP, 0}}

	// The writer is resolved when the runner is started, so redirecting
	// stdout before the run captures the log.
	oldOut := os.Stdout
	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = wOut

	config := interpreterConfig{
		runner: loggingRunner{},
	}
	_, runErr := run(config, params, code, nil)

	_ = wOut.Close() // ignore error in test
	out, _ := io.ReadAll(rOut)
	os.Stdout = oldOut

	if runErr != nil {
		t.Errorf("unexpected error: %v", runErr)
	}
	if want, got := "STOP, 10, -empty-\n", string(out); want != got {
		t.Errorf("unexpected log: want %q, got %q", want, got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("broken pipe")
}

func TestLoggingRunner_WriteErrorsAbortTheExecution(t *testing.T) {
	params := turandot.Parameters{Gas: 10}
	code := Code{{STOP, 0}}

	config := interpreterConfig{
		runner: loggingRunner{log: failingWriter{}},
	}
	_, err := run(config, params, code, nil)
	if err == nil {
		t.Errorf("expected an error, got none")
	}
}
