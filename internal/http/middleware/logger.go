package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"extranet/internal/logging"
)

// Logger logs one structured line per request with request_id, method,
// path, status and latency (milliseconds).
func Logger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		ev := logger.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = logger.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = logger.Warn()
		}
		ev.Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Msg("request")

		return err
	}
}

// LoggerWithWriter is Logger on a JSON logger writing to w, with timestamps
// in loc under the "ts" key.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	logger := logging.NewWithWriter(w, "debug").With().
		Str("component", "http").
		Logger().
		Hook(locationHook{loc: loc})
	return Logger(logger)
}

type locationHook struct{ loc *time.Location }

func (h locationHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("ts", time.Now().In(h.loc).Format(time.RFC3339Nano))
}
