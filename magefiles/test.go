//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test runs the unit tests of every package.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Cover runs the tests with a coverage profile and prints the summary.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Check runs vet and the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
	fmt.Println("All checks passed.")
}

// Styles builds the CLI and lists the bundled citation styles.
func Styles() error {
	mg.Deps(Build)
	return sh.RunV("./"+binDir+"/"+binName, "styles")
}
