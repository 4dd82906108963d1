package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

var stdin = bufio.NewReader(os.Stdin)

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, promptStyle.Render(prompt))
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, promptStyle.Render(prompt))
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptMaster() ([]byte, error) {
	pw, err := promptPassword("Master password: ")
	if err != nil {
		return nil, fmt.Errorf("read master password: %w", err)
	}
	return pw, nil
}

// promptNewSecret reads a secret twice and requires both to match.
func promptNewSecret(prompt, confirmPrompt string) ([]byte, error) {
	pw, err := promptPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	confirm, err := promptPassword(confirmPrompt)
	if err != nil {
		zeroBytes(pw)
		return nil, fmt.Errorf("read confirmation: %w", err)
	}
	defer zeroBytes(confirm)

	if !bytes.Equal(pw, confirm) {
		zeroBytes(pw)
		return nil, userError{msg: "passwords do not match"}
	}
	return pw, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
