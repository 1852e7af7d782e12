// Package rui holds the small set of interactive prompts the CLI needs
// before taking a destructive or irreversible action.
package rui

import "github.com/charmbracelet/huh"

// Confirm asks the user message, defaulting to "no" if they just hit enter.
// yes bypasses the prompt entirely and answers true, for --yes / unattended
// runs.
func Confirm(message string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
