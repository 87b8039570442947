// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Build compiles both CLI entry points into ./bin.
func Build() error {
	mg.Deps(Generate)
	if err := sh.RunV("go", "build", "-o", "bin/receiver", "./cmd/receiver"); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", "bin/sender", "./cmd/sender")
}

// Generate regenerates the counterfeiter fakes checked in alongside
// the interfaces they implement.
func Generate() error {
	return sh.RunV("go", "generate", "./...")
}

// Default is the target `mage` runs with no arguments.
var Default = Test
