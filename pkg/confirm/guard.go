// Package confirm asks the user before running actions on buttons that carry
// a confirmation message.
package confirm

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-erpforms/pkg/model"
)

// ErrCancelled is returned when the user declines the confirmation.
var ErrCancelled = errors.New("confirm: action cancelled")

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// ConfirmerFunc adapts a function into a Confirmer.
type ConfirmerFunc func(message string) (bool, error)

// Confirm calls fn.
func (fn ConfirmerFunc) Confirm(message string) (bool, error) {
	return fn(message)
}

// Always accepts every confirmation.
var Always Confirmer = ConfirmerFunc(func(string) (bool, error) { return true, nil })

// Guard gates button clicks on a Confirmer.
type Guard struct {
	confirmer Confirmer
}

// NewGuard returns a guard. A nil confirmer declines every confirmation.
func NewGuard(confirmer Confirmer) *Guard {
	return &Guard{confirmer: confirmer}
}

// Allow reports whether the click on btn may proceed. Buttons without a
// confirmation message always proceed.
func (g *Guard) Allow(btn model.Button) (bool, error) {
	if btn.Confirm == "" {
		return true, nil
	}
	if g == nil || g.confirmer == nil {
		return false, nil
	}
	ok, err := g.confirmer.Confirm(btn.Confirm)
	if err != nil {
		return false, fmt.Errorf("confirm: %s: %w", btn.Name, err)
	}
	return ok, nil
}

// Run executes action when the click on btn is allowed, and returns
// ErrCancelled when it is not.
func (g *Guard) Run(btn model.Button, action func() error) error {
	ok, err := g.Allow(btn)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	if action == nil {
		return nil
	}
	return action()
}
