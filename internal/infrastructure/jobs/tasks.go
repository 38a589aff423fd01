// Package jobs contiene las tareas asynq del ledger y el worker que las ejecuta.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola de las tareas del ledger.
	QueueDefault = "default"
	// TaskIntegrityScan recorre el ledger buscando grupos con stock negativo.
	TaskIntegrityScan = "inventory:integrity_scan"
)

// IntegrityScanPayload datos de la tarea de integridad.
type IntegrityScanPayload struct {
	RequestedBy string `json:"requested_by,omitempty"`
}

// NewIntegrityScanTask construye la tarea lista para encolar o programar.
func NewIntegrityScanTask(requestedBy string) (*asynq.Task, error) {
	data, err := json.Marshal(IntegrityScanPayload{RequestedBy: requestedBy})
	if err != nil {
		return nil, fmt.Errorf("serializar payload: %w", err)
	}
	return asynq.NewTask(TaskIntegrityScan, data), nil
}
