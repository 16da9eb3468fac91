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

	"github.com/Fantom-foundation/Turandot/go/turandot"
)

// Registers the structured-container EVM as a possible interpreter
// implementation.
func init() {

	configs := map[string]Config{
		// This is the officially supported EFVM interpreter configuration to be
		// used for production purposes.
		"efvm": {
			WithShaCache: true,
		},
	}

	for name, config := range configs {
		config := config
		turandot.MustRegisterInterpreterFactory(name, func(any) (turandot.Interpreter, error) {
			return NewVm(config)
		})
	}
}

// RegisterExperimentalInterpreterConfigurations registers all experimental
// EFVM interpreter configurations to Turandot's interpreter registry. This
// function should not be called in production code, as the resulting VMs are
// not officially supported.
func RegisterExperimentalInterpreterConfigurations() error {
	for _, shaCache := range []string{"", "-no-sha-cache"} {
		for _, mode := range []string{"", "-stats", "-logging"} {

			config := Config{
				WithShaCache: shaCache != "-no-sha-cache",
			}

			if mode == "-stats" {
				config.runner = &statisticRunner{
					stats: newStatistics(),
				}
			} else if mode == "-logging" {
				config.runner = loggingRunner{}
			}

			name := "efvm" + shaCache + mode
			if name != "efvm" {
				err := turandot.RegisterInterpreterFactory(
					name,
					func(any) (turandot.Interpreter, error) {
						return NewVm(config)
					},
				)
				if err != nil {
					return fmt.Errorf("failed to register %s: %v", name, err)
				}
			}
		}
	}
	return turandot.RegisterInterpreterFactory(
		"efvm-no-code-cache",
		func(any) (turandot.Interpreter, error) {
			return NewVm(Config{
				ConversionConfig: ConversionConfig{
					CacheSize: -1,
				},
			})
		},
	)
}

type Config struct {
	ConversionConfig
	WithShaCache bool
	runner       runner
}

type efvm struct {
	config    Config
	converter *Converter
}

func NewVm(config Config) (*efvm, error) {
	converter, err := NewConverter(config.ConversionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create converter: %v", err)
	}
	return &efvm{config: config, converter: converter}, nil
}

// Defines the only revision supported by this interpreter implementation. The
// structured container format is not part of any earlier revision.
const supportedRevision = turandot.R14_Prague

func (v *efvm) Run(params turandot.Parameters) (turandot.Result, error) {
	if params.Revision != supportedRevision {
		return turandot.Result{}, &turandot.ErrUnsupportedRevision{Revision: params.Revision}
	}

	code := params.Code
	var data []byte
	if isStructuredContainer(code) {
		var err error
		code, data, err = splitContainer(code)
		if err != nil {
			// A malformed container fails the contract execution, it is not an
			// issue of the interpreter itself.
			return turandot.Result{Success: false}, nil
		}
	}

	converted := v.converter.Convert(code, params.CodeHash)

	config := interpreterConfig{
		withShaCache: v.config.WithShaCache,
		runner:       v.config.runner,
	}

	return run(config, params, converted, data)
}

func (e *efvm) DumpProfile() {
	if statsRunner, ok := e.config.runner.(*statisticRunner); ok {
		fmt.Print(statsRunner.getSummary())
	}
}

func (e *efvm) ResetProfile() {
	if statsRunner, ok := e.config.runner.(*statisticRunner); ok {
		statsRunner.reset()
	}
}
