package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEnsureClientID(t *testing.T) {
	app := fiber.New()
	app.Get("/who", EnsureClientID(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("clientID").(string))
	})

	cases := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"header", "abc", "", fiber.StatusOK},
		{"query", "", "?clientId=xyz", fiber.StatusOK},
		{"blank header falls back to query", "  ", "?clientId=xyz", fiber.StatusOK},
		{"missing", "", "", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("X-Client-ID", tc.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.code {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.code)
			}
		})
	}
}

func TestWebSocketUpgradeRejectsPlainRequests(t *testing.T) {
	app := fiber.New()
	app.Get("/ws/game/:gameId", EnsureClientID(), WebSocketUpgrade(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws/game/g1?clientId=c", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("status = %d, want 426", resp.StatusCode)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "no") })

	for _, path := range []string{"/ok", "/boom"} {
		if _, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1); err != nil {
			t.Fatalf("app.Test: %v", err)
		}
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Fatalf("ok request logged at %s", entries[0].Level)
	}
	boom := entries[1]
	if boom.Level != zapcore.WarnLevel || boom.ContextMap()["status"] != int64(fiber.StatusTeapot) {
		t.Fatalf("boom entry = %+v", boom.ContextMap())
	}
}
