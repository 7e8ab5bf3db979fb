package logging

import (
	"context"
	"log/slog"

	"scrumboard/internal/middleware"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type AuditStatus string

const (
	AuditSuccess AuditStatus = "SUCCESS"
	AuditFailure AuditStatus = "FAILURE"
)

const AuditKey = "audit_event"

// LogAuditEvent schreibt sicherheitsrelevante Ereignisse (Login,
// Passwortwechsel, 2FA, Rollenänderungen) als markierte Log-Einträge.
func LogAuditEvent(ctx context.Context, eventType string, status AuditStatus, details ...slog.Attr) {
	userID, _ := middleware.GetUserIDFromContext(ctx)

	auditData, ok := middleware.GetAuditDataFromContext(ctx)
	if !ok {
		auditData = middleware.AuditData{}
	}

	traceID := chimiddleware.GetReqID(ctx)

	attrs := []slog.Attr{
		slog.String("event_type", eventType),
		slog.String("status", string(status)),
		slog.String("user_id", userID.String()),
		slog.String("trace_id", traceID),
		slog.String("source_ip", auditData.IPAddress),
	}

	attrs = append(attrs, details...)
	attrs = append(attrs, slog.Bool(AuditKey, true))

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	slog.WarnContext(ctx, "Audit Event: "+eventType, args...)
}
