package handler

import (
	"strconv"
	"time"

	"verokai-pos/internal/middleware"
	"verokai-pos/internal/model"
	"verokai-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{ID: "system", Name: "Sistema"}
	if id, ok := c.Locals(middleware.LocalUserID).(string); ok {
		actor.ID = id
	}
	if name, ok := c.Locals(middleware.LocalUserName).(string); ok {
		actor.Name = name
	}
	if email, ok := c.Locals(middleware.LocalUserEmail).(string); ok {
		actor.Email = email
	}
	return actor
}

func userIDFrom(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	return parsed, err == nil
}

// uintParam reads a positive integer route parameter.
func uintParam(c *fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// periodFrom reads fecha, mes and año (or anio) from the query string.
func periodFrom(c *fiber.Ctx, loc *time.Location) (model.Period, error) {
	year := c.Query("año")
	if year == "" {
		year = c.Query("anio")
	}
	return service.ParsePeriod(service.PeriodQuery{
		Date:  c.Query("fecha"),
		Month: c.Query("mes"),
		Year:  year,
	}, loc, time.Now())
}
