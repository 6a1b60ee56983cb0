package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

func serveHealth(t *testing.T, s *Server) (int, map[string]any) {
	t.Helper()

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/health")
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	s.Router.Handler(&ctx)

	var body map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("invalid health body %q: %v", ctx.Response.Body(), err)
	}
	return ctx.Response.StatusCode(), body
}

func TestHealthOK(t *testing.T) {
	s := NewServer("test", "0", zerolog.Nop())
	s.AddHealthCheck("storage", func(context.Context) error { return nil })
	s.RegisterHealth()

	code, body := serveHealth(t, s)
	if code != fasthttp.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestHealthDegraded(t *testing.T) {
	s := NewServer("test", "0", zerolog.Nop())
	s.AddHealthCheck("storage", func(context.Context) error { return errors.New("down") })
	s.RegisterHealth()

	code, body := serveHealth(t, s)
	if code != fasthttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	checks, _ := body["checks"].(map[string]any)
	if checks["storage"] != "down" {
		t.Errorf("checks = %v", body["checks"])
	}
}
