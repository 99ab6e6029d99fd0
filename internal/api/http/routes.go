package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weath3r-terminal/internal/chat"
	"github.com/i474232898/weath3r-terminal/internal/market"
	"github.com/i474232898/weath3r-terminal/internal/weather"
)

var validate = validator.New()

// MarketBoard builds market cards.
type MarketBoard interface {
	Cards(ctx context.Context, q market.Query) ([]market.Card, error)
}

// WeatherReporter serves the weather panel and search helpers.
type WeatherReporter interface {
	Report(ctx context.Context, city string) (weather.Report, error)
	Suggest(ctx context.Context, q string) []string
	CityAt(ctx context.Context, lat, lon float64) (string, error)
}

// ChatReplier answers questions about a market.
type ChatReplier interface {
	Reply(ctx context.Context, messages []chat.Message, market chat.MarketContext) (string, error)
}

// Services are the route dependencies.
type Services struct {
	Market  MarketBoard
	Weather WeatherReporter
	Chat    ChatReplier
}

// Persona error replies. The chat panel shows them verbatim, so they stay in
// character and never carry upstream details.
const (
	replyNotConfigured = "SYSTEM ERROR: the OpenRouter API key has not been configured in the environment."
	replyUpstreamDown  = "SYSTEM ERROR: signal interference on the OpenRouter mainframe."
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc Services) {
	api := app.Group("/api")

	api.Get("/polymarket", marketBoardHandler(svc.Market))

	api.Get("/weather", func(c *fiber.Ctx) error {
		q := weatherQuery{City: strings.TrimSpace(c.Query("city"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		report, err := svc.Weather.Report(c.UserContext(), q.City)
		if err != nil {
			if errors.Is(err, weather.ErrCityNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "city not found")
			}
			log.Error().Err(err).Str("city", q.City).Msg("weather report failed")
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}

		return c.JSON(report)
	})

	api.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(svc.Weather.Suggest(c.UserContext(), c.Query("q")))
	})

	api.Get("/geocode/reverse", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		city, err := svc.Weather.CityAt(c.UserContext(), q.Lat, q.Lon)
		if err != nil || city == "" {
			if err != nil {
				log.Warn().Err(err).Msg("reverse geocoding failed")
			}
			return c.JSON(fiber.Map{"city": nil})
		}
		return c.JSON(fiber.Map{"city": city})
	})

	api.Post("/chat", func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reply, err := svc.Chat.Reply(c.UserContext(), req.Messages, req.Context)
		if err != nil {
			msg := replyUpstreamDown
			if errors.Is(err, chat.ErrNotConfigured) {
				msg = replyNotConfigured
			}
			log.Error().Err(err).Msg("chat reply failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"reply": msg})
		}

		return c.JSON(fiber.Map{"reply": reply})
	})
}

// marketBoardHandler always answers 200. Any failure, including a panic
// below it, degrades to an empty board.
func marketBoardHandler(board MarketBoard) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("market board panicked")
				err = c.Status(fiber.StatusOK).JSON([]market.Card{})
			}
		}()

		q, err := parseMarketQuery(c)
		if err != nil {
			log.Warn().Err(err).Msg("invalid market query")
			return c.JSON([]market.Card{})
		}

		cards, err := board.Cards(c.UserContext(), q)
		if err != nil {
			log.Error().Err(err).Str("tab", string(q.Tab)).Msg("market board failed")
			return c.JSON([]market.Card{})
		}

		return c.JSON(cards)
	}
}

// marketQuery holds query parameters for the market board.
type marketQuery struct {
	Tab  string `validate:"max=32"`
	City string `validate:"max=100"`
}

func parseMarketQuery(c *fiber.Ctx) (market.Query, error) {
	q := marketQuery{
		Tab:  c.Query("tab"),
		City: cityFilter(c.Query("city")),
	}
	if err := validate.Struct(q); err != nil {
		return market.Query{}, err
	}
	return market.Query{Tab: market.ParseTab(q.Tab), City: q.City}, nil
}

// cityFilter keeps the city part of "City, Country" labels.
func cityFilter(raw string) string {
	city, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(city)
}

type weatherQuery struct {
	City string `validate:"required,max=100"`
}

type coordQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordQuery(c *fiber.Ctx) (coordQuery, error) {
	var q coordQuery

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, fmt.Errorf("invalid lat: %w", err)
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, fmt.Errorf("invalid lon: %w", err)
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

type chatRequest struct {
	Messages []chat.Message     `json:"messages" validate:"required,min=1,max=50,dive"`
	Context  chat.MarketContext `json:"context"`
}
