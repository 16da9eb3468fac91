// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter_test

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Fantom-foundation/Turandot/go/interpreter/efvm"
	"github.com/Fantom-foundation/Turandot/go/turandot"
	"golang.org/x/exp/maps"
)

func init() {
	if err := efvm.RegisterExperimentalInterpreterConfigurations(); err != nil {
		panic(fmt.Errorf("failed to register experimental interpreter configurations: %v", err))
	}
}

func getAllInterpreterVariantsForTests() []string {
	variants := maps.Keys(turandot.GetAllRegisteredInterpreters())
	variants = slices.DeleteFunc(variants, func(variant string) bool {
		// TODO: re-add logging variants once logging is no longer writing everything to stdout
		return strings.Contains(variant, "logging")
	})
	return variants
}
