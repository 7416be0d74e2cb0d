package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/medisure/claims-portal/internal/logging"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	logger := logging.Discard()

	submissions := 0
	app.Post("/claims", Idempotency(cache, time.Minute, logger), func(c *fiber.Ctx) error {
		submissions++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"claim_id": "c-1", "submissions": submissions})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, cleanup := setupIdempotencyApp(t)
	defer cleanup()

	req := httptest.NewRequest(fiber.MethodPost, "/claims", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestIdempotencyReplaysFirstSubmission(t *testing.T) {
	app, cleanup := setupIdempotencyApp(t)
	defer cleanup()

	send := func() ([]byte, int) {
		req := httptest.NewRequest(fiber.MethodPost, "/claims", strings.NewReader("{}"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(idempotencyKeyHeader, "retry-1")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		resp.Body.Close()
		return body, resp.StatusCode
	}

	first, status := send()
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 got %d", status)
	}
	second, status := send()
	if status != fiber.StatusCreated {
		t.Fatalf("expected cached 201 got %d", status)
	}

	if string(first) != string(second) {
		t.Fatalf("retry was not replayed: %s vs %s", first, second)
	}

	var decoded struct {
		Submissions int `json:"submissions"`
	}
	if err := json.Unmarshal(second, &decoded); err != nil {
		t.Fatalf("decode cached payload: %v", err)
	}
	if decoded.Submissions != 1 {
		t.Fatalf("handler ran %d times, want 1", decoded.Submissions)
	}
}

func TestLoginRateLimitBlocksRepeatedAttempts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, 3), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	attempt := func() int {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 3; i++ {
		if code := attempt(); code != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, code)
		}
	}
	if code := attempt(); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", code)
	}
}
