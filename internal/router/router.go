// Package router maps decoded wire requests to domain operations and turns
// their outcomes into wire responses. It owns the request lifecycle and
// never touches raw framing beyond handing the stream to httpwire.
package router

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/teller/internal/auth"
	"github.com/congo-pay/teller/internal/httpwire"
	"github.com/congo-pay/teller/internal/idempotency"
	"github.com/congo-pay/teller/internal/identity"
	"github.com/congo-pay/teller/internal/ledger"
	"github.com/congo-pay/teller/internal/ratelimit"
)

// Router dispatches one request per connection.
type Router struct {
	ledger   *ledger.Service
	identity *identity.Service
	tokens   *auth.Service
	limiter  *ratelimit.Limiter
	idem     *idempotency.Store
	logger   *slog.Logger
}

// New wires the dispatcher to its collaborators. limiter and idem may be
// built on a nil redis client, in which case they are no-ops.
func New(led *ledger.Service, id *identity.Service, tokens *auth.Service, limiter *ratelimit.Limiter, idem *idempotency.Store, logger *slog.Logger) *Router {
	return &Router{ledger: led, identity: id, tokens: tokens, limiter: limiter, idem: idem, logger: logger}
}

// Handle reads exactly one request from rw, writes exactly one response, and
// returns. The caller owns closing the connection afterwards; there is no
// keep-alive.
func (rt *Router) Handle(rw io.ReadWriter) {
	ctx := context.Background()
	start := time.Now()
	requestID := uuid.NewString()

	req, err := httpwire.ReadRequest(bufio.NewReader(rw))
	if err != nil {
		status := rt.respondError(rw, http.StatusInternalServerError, "internal server error")
		rt.logger.Error("request rejected",
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return
	}

	status := rt.dispatch(ctx, rw, req)

	rt.logger.Info("request completed",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", requestID))
}

func (rt *Router) dispatch(ctx context.Context, w io.Writer, req httpwire.Request) int {
	switch req.Method + " " + req.Path {
	case "POST /signup":
		return rt.handleSignup(ctx, w, req)
	case "POST /signin":
		return rt.handleSignin(ctx, w, req)
	case "GET /money":
		return rt.handleBalance(ctx, w, req)
	case "POST /money":
		return rt.handleTransfer(ctx, w, req)
	default:
		return rt.respondError(w, http.StatusNotFound, "not found")
	}
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func (rt *Router) respondJSON(w io.Writer, status int, v any) int {
	payload, err := json.Marshal(v)
	if err != nil {
		rt.logger.Error("encode response", slog.Any("error", err))
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"internal server error"}`)
	}
	if err := httpwire.WriteResponse(w, status, jsonHeaders, string(payload)); err != nil {
		rt.logger.Error("write response", slog.Any("error", err))
	}
	return status
}

func (rt *Router) respondError(w io.Writer, status int, message string) int {
	return rt.respondJSON(w, status, errorResponse{Error: message})
}
