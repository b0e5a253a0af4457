package httpapi

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

var validate = validator.New()

const internalErrorMessage = "Internal Server Error"

const (
	corsOrigins = "*"
	corsMethods = "GET,OPTIONS"
	corsHeaders = "Content-Type"
)

// NewApp returns a Fiber app with the shared error handler and middleware.
func NewApp(appName string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: corsMethods,
		AllowHeaders: corsHeaders,
	}))
	app.Use(logger.New())
	app.Use(recover.New())

	return app
}

// errorHandler echoes client errors and hides everything else.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(code).JSON(fiber.Map{"error": internalErrorMessage})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "precipitation-tracker",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/precipitation", func(c *fiber.Ctx) error {
		q, err := parseStationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if q.Station == "" {
			records, err := service.Latest(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{
				"stations": records,
				"count":    len(records),
				"metadata": fiber.Map{
					"source": "National Weather Service",
					"type":   "Precipitation Data",
				},
			})
		}

		history, err := service.History(c.UserContext(), q.Station)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"station_id": q.Station,
			"history":    history,
			"count":      len(history),
		})
	})

	v1.Options("/precipitation", noContent)

	v1.Get("/stations", func(c *fiber.Ctx) error {
		stations := service.Stations().All()
		return c.JSON(fiber.Map{
			"stations": stations,
			"count":    len(stations),
		})
	})

	v1.Options("/stations", noContent)

	v1.Post("/collect", func(c *fiber.Ctx) error {
		summary, err := service.TryCollect(c.UserContext())
		if errors.Is(err, weather.ErrCollectionRunning) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return err
		}
		return c.JSON(summary)
	})
}

// noContent answers OPTIONS requests that are not CORS preflights. The cors
// middleware passes those through without headers.
func noContent(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, corsOrigins)
	c.Set(fiber.HeaderAccessControlAllowMethods, corsMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, corsHeaders)
	return c.SendStatus(fiber.StatusNoContent)
}

// stationQuery holds the optional station filter.
type stationQuery struct {
	Station string `validate:"omitempty,alphanum,max=8"`
}

func parseStationQuery(c *fiber.Ctx) (stationQuery, error) {
	q := stationQuery{Station: strings.TrimSpace(c.Query("station"))}

	if err := validate.Struct(q); err != nil {
		return q, errors.New("station must be an alphanumeric id of at most 8 characters")
	}

	q.Station = strings.ToUpper(q.Station)
	return q, nil
}
