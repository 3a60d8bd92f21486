package middleware

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// QueryLocal is the Locals key holding the cleaned query for downstream handlers.
const QueryLocal = "cleanQuery"

var (
	allowedQuery   = regexp.MustCompile(`^[\p{L}\p{N}\s,.\-'/&()]+$`)
	urlPattern     = regexp.MustCompile(`(?i)https?://`)
	coordinateLike = regexp.MustCompile(`-?\d{1,3}\.\d{3,}`)
	whitespace     = regexp.MustCompile(`\s+`)
	controlChars   = regexp.MustCompile(`[\x00-\x1F]`)
)

// CleanQuery collapses whitespace and strips control characters.
func CleanQuery(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	s = controlChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CheckQuery returns the rejection message for q, or "" when q is acceptable.
func CheckQuery(field, q string, maxLen int) string {
	switch {
	case q == "":
		return fmt.Sprintf("%s is required", field)
	case len([]rune(q)) > maxLen:
		return fmt.Sprintf("%s too long (>%d)", field, maxLen)
	case !allowedQuery.MatchString(q):
		return fmt.Sprintf("%s contains unsupported characters", field)
	case urlPattern.MatchString(q) || coordinateLike.MatchString(q):
		return fmt.Sprintf("%s looks unsafe", field)
	default:
		return ""
	}
}

// QueryGuard validates the free-text field of a JSON body before it reaches
// the handler. Rejections are 400 {"message": ...}.
func QueryGuard(field string, maxLen int) fiber.Handler {
	if maxLen <= 0 {
		maxLen = 120
	}

	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			body = nil
		}

		raw, _ := body[field].(string)
		q := CleanQuery(raw)

		if msg := CheckQuery(field, q, maxLen); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
		}

		c.Locals(QueryLocal, q)
		return c.Next()
	}
}
