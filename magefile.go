//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

var binaries = []string{"cardprep", "cardsheet"}

// Build compiles cardprep and cardsheet into ./bin
func Build() error {
	if err := os.MkdirAll("bin", 0755); err != nil {
		return err
	}
	for _, name := range binaries {
		fmt.Printf("Building %s...\n", name)
		if err := sh.RunV("go", "build", "-o", filepath.Join("bin", name), "./cmd/"+name); err != nil {
			return err
		}
	}
	return nil
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs both binaries into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	for _, name := range binaries {
		if err := sh.RunV("go", "install", "./cmd/"+name); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes build output
func Clean() error {
	fmt.Println("Cleaning...")
	return sh.Rm("bin")
}
