package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// parseBody decodifica y valida el cuerpo. Si falla escribe el 400 y devuelve false.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, respond(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido", nil)
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, respond(c, fiber.StatusBadRequest, "VALIDATION", "datos inválidos", nil)
		}
		details := make(map[string]string, len(verrs))
		for _, e := range verrs {
			details[e.Field()] = validationMessage(e)
		}
		return false, respond(c, fiber.StatusBadRequest, "VALIDATION", "datos inválidos", details)
	}
	return true, nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo obligatorio"
	case "min":
		return "debe ser al menos " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "datetime":
		return "fecha con formato " + e.Param()
	default:
		return "valor inválido"
	}
}
