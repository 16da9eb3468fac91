// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package turandot

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// NewInterpreter creates a new instance of the interpreter registered under
// the given name, forwarding an optional configuration object to the
// factory. At most one configuration object may be provided. Interpreter
// names are case-insensitive.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("at most one configuration object supported, got %d", len(config))
	}
	factory := GetInterpreterFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("no interpreter registered under the name %s", name)
	}
	var cfg any
	if len(config) == 1 {
		cfg = config[0]
	}
	return factory(cfg)
}

// GetInterpreterFactory returns the factory registered under the given name,
// or nil if no factory is registered for it.
func GetInterpreterFactory(name string) InterpreterFactory {
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	return interpreterRegistry[strings.ToLower(name)]
}

// GetAllRegisteredInterpreters returns a snapshot of all currently
// registered interpreter factories.
func GetAllRegisteredInterpreters() map[string]InterpreterFactory {
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	return maps.Clone(interpreterRegistry)
}

// RegisterInterpreterFactory registers a factory for a new Interpreter
// implementation. The name is not case-sensitive. This function is intended
// to be called in package initialization code, and registered factories
// remain available for the lifetime of the process. Registrations fail if
// the name is already in use or the factory is nil.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	if factory == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-factory using `%s`", name)
	}
	key := strings.ToLower(name)
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	if _, found := interpreterRegistry[key]; found {
		return fmt.Errorf("invalid initialization: multiple factories registered for `%s`", key)
	}
	interpreterRegistry[key] = factory
	return nil
}

// MustRegisterInterpreterFactory is like RegisterInterpreterFactory, but
// panics on registration errors. It is the variant to be used in package
// initialization code.
func MustRegisterInterpreterFactory(name string, factory InterpreterFactory) {
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		panic(fmt.Sprintf("failed to register interpreter %q: %v", name, err))
	}
}

// InterpreterFactory is the type of a function creating a new Interpreter
// instance from an optional implementation-specific configuration object.
type InterpreterFactory func(config any) (Interpreter, error)

// interpreterRegistry is a global registry for Interpreter instances of
// different implementations and configurations.
var interpreterRegistry = map[string]InterpreterFactory{}

// interpreterRegistryLock to protect access to the registry.
var interpreterRegistryLock sync.Mutex
