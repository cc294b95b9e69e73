package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/congo-pay/teller/internal/account"
	"github.com/congo-pay/teller/internal/auth"
	"github.com/congo-pay/teller/internal/httpwire"
	"github.com/congo-pay/teller/internal/idempotency"
	"github.com/congo-pay/teller/internal/identity"
)

const idempotencyKeyHeader = "Idempotency-Key"

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type transferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (rt *Router) handleSignup(ctx context.Context, w io.Writer, req httpwire.Request) int {
	creds, ok := parseCredentials(req.Body)
	if !ok {
		return rt.respondError(w, http.StatusBadRequest, "login and password must not be empty")
	}

	if err := rt.identity.Register(ctx, creds); err != nil {
		if errors.Is(err, account.ErrAlreadyExists) {
			return rt.respondError(w, http.StatusConflict, "user already exists")
		}
		return rt.respondError(w, http.StatusInternalServerError, "internal server error")
	}

	return rt.respondJSON(w, http.StatusCreated, messageResponse{Message: "registration successful"})
}

func (rt *Router) handleSignin(ctx context.Context, w io.Writer, req httpwire.Request) int {
	creds, ok := parseCredentials(req.Body)
	if !ok {
		return rt.respondError(w, http.StatusBadRequest, "login and password must not be empty")
	}

	if !rt.limiter.Allow(ctx, creds.Login) {
		return rt.respondError(w, http.StatusTooManyRequests, "too many signin attempts, try again later")
	}

	if err := rt.identity.Authenticate(ctx, creds); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return rt.respondError(w, http.StatusNotFound, "user not found")
		}
		return rt.respondError(w, http.StatusInternalServerError, "internal server error")
	}

	token, err := rt.tokens.Issue(creds.Login)
	if err != nil {
		return rt.respondError(w, http.StatusInternalServerError, "internal server error")
	}

	return rt.respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (rt *Router) handleBalance(ctx context.Context, w io.Writer, req httpwire.Request) int {
	subject, status := rt.authenticate(req)
	if status != 0 {
		return rt.respondError(w, status, "invalid or missing token")
	}

	balance, err := rt.ledger.Balance(ctx, subject)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return rt.respondError(w, http.StatusNotFound, "user not found")
		}
		return rt.respondError(w, http.StatusInternalServerError, "internal server error")
	}

	return rt.respondJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

func (rt *Router) handleTransfer(ctx context.Context, w io.Writer, req httpwire.Request) int {
	subject, status := rt.authenticate(req)
	if status != 0 {
		return rt.respondError(w, status, "invalid or missing token")
	}

	var body transferRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return rt.respondError(w, http.StatusBadRequest, "invalid request body")
	}
	body.To = strings.TrimSpace(body.To)
	if body.To == "" || body.Amount <= 0 {
		return rt.respondError(w, http.StatusBadRequest, "invalid 'to' or 'amount' value")
	}
	if body.To == subject {
		return rt.respondError(w, http.StatusBadRequest, "cannot transfer money to yourself")
	}

	key := req.Headers[idempotencyKeyHeader]
	reserved := false
	if key != "" && rt.idem.Enabled() {
		stored, err := rt.idem.Begin(ctx, key)
		if err != nil {
			return rt.respondError(w, http.StatusConflict, "duplicate request currently processing")
		}
		if stored != nil {
			if err := httpwire.WriteResponse(w, stored.Status, jsonHeaders, stored.Body); err != nil {
				rt.logger.Error("write replayed response", "error", err)
			}
			return stored.Status
		}
		reserved = true
	}

	if err := rt.ledger.Transfer(ctx, subject, body.To, body.Amount); err != nil {
		if reserved {
			rt.idem.Abort(ctx, key)
		}
		switch {
		case errors.Is(err, account.ErrInsufficientFunds):
			return rt.respondError(w, http.StatusForbidden, "insufficient funds")
		case errors.Is(err, account.ErrNotFound):
			return rt.respondError(w, http.StatusNotFound, "account not found")
		default:
			return rt.respondError(w, http.StatusInternalServerError, "internal server error")
		}
	}

	payload, _ := json.Marshal(messageResponse{Message: "transfer complete"})
	if reserved {
		rt.idem.Complete(ctx, key, idempotency.Response{Status: http.StatusOK, Body: string(payload)})
	}
	if err := httpwire.WriteResponse(w, http.StatusOK, jsonHeaders, string(payload)); err != nil {
		rt.logger.Error("write response", "error", err)
	}
	return http.StatusOK
}

// authenticate extracts and validates the bearer token. It returns the token
// subject, or a non-zero status the caller must respond with.
func (rt *Router) authenticate(req httpwire.Request) (string, int) {
	token, err := auth.BearerToken(req.Headers)
	if err != nil {
		return "", http.StatusUnauthorized
	}
	subject, err := rt.tokens.Validate(token)
	if err != nil {
		return "", http.StatusUnauthorized
	}
	return subject, 0
}

func parseCredentials(body string) (identity.Credentials, bool) {
	var req credentialsRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return identity.Credentials{}, false
	}
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return identity.Credentials{}, false
	}
	return identity.Credentials{Login: login, Password: req.Password}, true
}
