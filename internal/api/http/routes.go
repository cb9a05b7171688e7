package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/nwsdaily/nws-daily-forecast/internal/forecast"
	"github.com/nwsdaily/nws-daily-forecast/internal/store"
)

var validate = validator.New()

// ForecastStore reads cached forecasts. *store.MemoryStore satisfies it.
type ForecastStore interface {
	GetLatest(loc forecast.Location) (store.Entry, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, st ForecastStore, points []forecast.Location) {
	v1 := app.Group("/api/v1")

	v1.Get("/points", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"points": points,
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q pointQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, ok := findPoint(points, q.Point)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown point")
		}

		entry, err := st.GetLatest(loc)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast for requested point")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read forecast")
		}

		return c.JSON(fiber.Map{
			"point":    entry.Location,
			"updated":  entry.Updated,
			"summary":  entry.Summary,
			"forecast": entry.Periods,
		})
	})
}

// pointQuery holds query parameters identifying a configured point.
type pointQuery struct {
	Point string `validate:"required"`
}

func (q *pointQuery) bind(c *fiber.Ctx) error {
	q.Point = c.Query("point")
	return validate.Struct(q)
}

func findPoint(points []forecast.Location, name string) (forecast.Location, bool) {
	for _, p := range points {
		if p.Name == name {
			return p, true
		}
	}
	return forecast.Location{}, false
}
