package middleware

import (
	"errors"
	"strconv"
	"time"

	"dropzone/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latencies. Requests are labelled by
// the matched route pattern, not the raw path, to keep label cardinality
// bounded.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		labels := []string{c.Method(), route, strconv.Itoa(status)}
		metrics.RequestTotal.WithLabelValues(labels...).Inc()
		metrics.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
