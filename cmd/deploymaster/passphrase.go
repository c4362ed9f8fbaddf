// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/toeirei/deploymaster/internal/i18n"
	"github.com/toeirei/deploymaster/internal/plugin/sftp"
)

func init() {
	sftp.PassphraseFunc = promptPassphrase
}

// promptPassphrase reads a private key passphrase from the terminal. It
// fails when stdin is not a terminal so unattended runs error out instead
// of hanging on a prompt nobody can answer.
func promptPassphrase(target string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot prompt for passphrase: stdin is not a terminal")
	}
	fmt.Printf(i18n.T("cli.passphrase_prompt"), target)
	pass, err := term.ReadPassword(fd)
	fmt.Println()
	return pass, err
}
