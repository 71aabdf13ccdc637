package common

import (
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionMismatch  = errors.New("session is bound to a different customer")
	ErrFileNotFound     = errors.New("file not found")
	ErrInvalidAmount    = errors.New("requested amount must be positive")
	ErrNothingToConfirm = errors.New("no pending approval to confirm")
)

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func SuccessResponse(c *fiber.Ctx, statusCode int, data any) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// FormatComma2 renders a decimal with two fractional digits and thousands
// separators, e.g. 8955.2 -> "8,955.20". Used in customer-facing copy.
func FormatComma2(d decimal.Decimal) string {
	return groupThousands(d.StringFixed(2))
}

// FormatCommaInt renders an integer amount with thousands separators.
func FormatCommaInt(v int64) string {
	return groupThousands(decimal.NewFromInt(v).StringFixed(0))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if hasFrac {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}

	return out
}
