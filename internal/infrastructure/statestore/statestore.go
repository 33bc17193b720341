// Package statestore persists export run state so an interrupted run can
// resume where it stopped.
package statestore

import (
	"errors"

	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
)

// ErrNotFound is returned when no state is stored under the given key.
var ErrNotFound = errors.New("statestore: state not found")

// Store persists export state between pagination steps and across process
// restarts.
type Store interface {
	Load(key string) (*model.ExportState, error)
	Save(key string, state *model.ExportState) error
	Clear(key string) error
}
