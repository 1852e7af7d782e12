//go:build tools

// Package tools declares dependencies to keep them in go.mod ahead of the
// code that will import them.
package tools

import (
	_ "github.com/google/uuid"
)
