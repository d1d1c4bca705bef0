package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"

	"ticketbari/internal/auth"
	"ticketbari/internal/logging"
	"ticketbari/models"
)

const (
	callerKey           = "ticketbari.caller"
	correlationIDHeader = "Correlation-ID"
)

type Authenticator struct {
	guard *auth.Guard
}

func NewAuthenticator(guard *auth.Guard) *Authenticator {
	return &Authenticator{guard: guard}
}

// Require resolves the bearer caller and checks it holds one of roles. With
// no roles any authenticated caller passes.
func (a *Authenticator) Require(roles ...models.Role) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()

		caller, err := a.guard.Identify(ctx, e.Request.Header.Get("Authorization"))
		if err != nil {
			return err
		}
		if err := a.guard.Authorize(caller, e.Request.Method, roles...); err != nil {
			return err
		}

		e.Set(callerKey, caller)
		entry := logging.FromContext(ctx).WithField("caller", caller.Email)
		e.Request = e.Request.WithContext(logging.ContextWithLogger(ctx, entry))
		return e.Next()
	}
}

// Self checks the caller acts on its own account, or is an admin when
// allowAdmin is set.
func (a *Authenticator) Self(e *core.RequestEvent, email string, allowAdmin bool) error {
	return a.guard.AuthorizeSelf(callerFrom(e), e.Request.Method, email, allowAdmin)
}

func callerFrom(e *core.RequestEvent) *auth.Caller {
	caller, _ := e.Get(callerKey).(*auth.Caller)
	return caller
}

func rateLimitKey(e *core.RequestEvent) string {
	if caller := callerFrom(e); caller != nil {
		return "user:" + models.NormalizeEmail(caller.Email)
	}
	return "ip:" + e.RemoteIP()
}

// requestLogger attaches a correlation id and a request scoped logger, and
// turns handler errors into API errors.
func requestLogger(e *core.RequestEvent) error {
	start := time.Now()

	id := e.Request.Header.Get(correlationIDHeader)
	ctx := e.Request.Context()
	if id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	id = logging.CorrelationIDFromContext(ctx)
	ctx = logging.ContextWithCorrelationID(ctx, id)

	entry := logrus.WithFields(logrus.Fields{
		"correlation_id": id,
		"method":         e.Request.Method,
		"path":           e.Request.URL.Path,
	})
	e.Request = e.Request.WithContext(logging.ContextWithLogger(ctx, entry))
	e.Response.Header().Set(correlationIDHeader, id)

	err := e.Next()
	took := time.Since(start).String()
	if err == nil {
		entry.WithField("took", took).Debug("request handled")
		return nil
	}

	apiErr := toAPIError(err)
	fields := logrus.Fields{"status": apiErr.Status, "took": took}
	if apiErr.Status >= http.StatusInternalServerError {
		entry.WithFields(fields).WithError(err).Error("request failed")
	} else {
		entry.WithFields(fields).WithError(err).Info("request rejected")
	}
	return apiErr
}
