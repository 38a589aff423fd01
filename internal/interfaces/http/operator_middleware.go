package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/messaging"
)

// Cabeceras y locals del operador. No hay autenticación: el id se registra tal cual
// en CreatedBy de cada movimiento.
const (
	HeaderOperatorID = "X-Operator-ID"
	HeaderRequestID  = "X-Request-ID"
	LocalOperatorID  = "operator_id"
)

// OperatorMiddleware copia X-Operator-ID a c.Locals y propaga X-Request-ID (o uno nuevo)
// como id de correlación de los eventos publicados.
func OperatorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalOperatorID, c.Get(HeaderOperatorID))

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)
		c.SetUserContext(messaging.WithCorrelationID(c.UserContext(), requestID))
		return c.Next()
	}
}

// GetOperatorID devuelve el operador de la petición ("" si no vino la cabecera).
func GetOperatorID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalOperatorID).(string)
	return s
}
