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
	"slices"
	"strings"
	"testing"

	"golang.org/x/exp/maps"
)

func TestInterpreterRegistry_NameCollisionsAreDetected(t *testing.T) {
	const name = "something-just-for-this-test"
	factory := func(any) (Interpreter, error) {
		return nil, nil
	}
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterInterpreterFactory(name, factory); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestInterpreterRegistry_NilFactoriesAreRejected(t *testing.T) {
	const name = "something"
	if err := RegisterInterpreterFactory(name, nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestInterpreterRegistry_NamesAreCaseInsensitive(t *testing.T) {
	const name = "MiXeD-CaSe-NaMe"
	factory := func(any) (Interpreter, error) {
		return nil, nil
	}
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := GetInterpreterFactory(strings.ToUpper(name)); got == nil {
		t.Errorf("failed to locate factory using upper-case name")
	}
	if got := GetInterpreterFactory(strings.ToLower(name)); got == nil {
		t.Errorf("failed to locate factory using lower-case name")
	}
}

func TestInterpreterRegistry_RegisteredFactoriesAreListed(t *testing.T) {
	const name = "listed-factory"
	factory := func(any) (Interpreter, error) {
		return nil, nil
	}
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := maps.Keys(GetAllRegisteredInterpreters())
	if !slices.Contains(names, name) {
		t.Errorf("%v not found in list of factories, found %v", name, names)
	}
}

func TestInterpreterRegistry_NewInterpreterReportsUnknownNames(t *testing.T) {
	if _, err := NewInterpreter("an-interpreter-that-does-not-exist"); err == nil {
		t.Errorf("expected an error, got nil")
	}
}

func TestInterpreterRegistry_NewInterpreterRejectsMultipleConfigurations(t *testing.T) {
	const name = "configured-interpreter"
	factory := func(any) (Interpreter, error) {
		return nil, nil
	}
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewInterpreter(name, 1, 2); err == nil {
		t.Errorf("expected an error, got nil")
	}
}

func TestInterpreterRegistry_MustRegisterPanicsOnCollision(t *testing.T) {
	const name = "must-register-collision"
	factory := func(any) (Interpreter, error) {
		return nil, nil
	}
	MustRegisterInterpreterFactory(name, factory)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic, got nil")
		}
	}()
	MustRegisterInterpreterFactory(name, factory)
}
