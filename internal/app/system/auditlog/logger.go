// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/hrms/internal/app/store/audit"
	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Logging modes for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// ValidMode reports whether s names a logging mode.
func ValidMode(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in and sign-out events.
	Auth string
	// Records controls create/update/delete/export events on HR records.
	Records string
}

// Logger records audit events to MongoDB (audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.TenantID != "" {
		fields = append(fields, zap.String("tenant_id", event.TenantID))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Entity != "" {
		fields = append(fields, zap.String("entity", event.Entity))
	}
	if event.RecordID != "" {
		fields = append(fields, zap.String("record_id", event.RecordID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the mode of its category.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryRecords:
		setting = l.config.Records
	}
	setting = strings.ToLower(strings.TrimSpace(setting))
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		// The request may already be cancelled (client gone); the event still counts.
		if err := l.store.Log(context.WithoutCancel(ctx), event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

func oidPtr(hex string) *primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &id
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, tenantID, authMethod, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.TenantID = tenantID
	e.Details = map[string]string{"auth_method": authMethod, "email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a sign-in for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a sign-in with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, tenantID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.TenantID = tenantID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedUserDisabled logs a sign-in to a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, tenantID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserDisabled, false)
	e.UserID = &userID
	e.TenantID = tenantID
	e.FailureReason = "user disabled"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a sign-in rejected by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr, tenantID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLogout, true)
	e.UserID = oidPtr(userIDStr)
	e.TenantID = tenantID
	l.Log(ctx, e)
}

// --- Record Events ---

func (l *Logger) recordEvent(ctx context.Context, r *http.Request, eventType string, actor *auth.SessionUser, entity, recordID string, details map[string]string) {
	e := requestEvent(r, audit.CategoryRecords, eventType, true)
	e.Entity = entity
	e.RecordID = recordID
	e.Details = details
	if actor != nil {
		e.ActorID = oidPtr(actor.ID)
		e.TenantID = actor.TenantID
	}
	l.Log(ctx, e)
}

// RecordCreated logs a new HR record.
func (l *Logger) RecordCreated(ctx context.Context, r *http.Request, actor *auth.SessionUser, entity, recordID string) {
	l.recordEvent(ctx, r, audit.EventRecordCreated, actor, entity, recordID, nil)
}

// RecordUpdated logs a replaced HR record.
func (l *Logger) RecordUpdated(ctx context.Context, r *http.Request, actor *auth.SessionUser, entity, recordID string) {
	l.recordEvent(ctx, r, audit.EventRecordUpdated, actor, entity, recordID, nil)
}

// RecordDeleted logs a removed HR record.
func (l *Logger) RecordDeleted(ctx context.Context, r *http.Request, actor *auth.SessionUser, entity, recordID string) {
	l.recordEvent(ctx, r, audit.EventRecordDeleted, actor, entity, recordID, nil)
}

// RecordsExported logs a CSV export.
func (l *Logger) RecordsExported(ctx context.Context, r *http.Request, actor *auth.SessionUser, entity string, rows int) {
	l.recordEvent(ctx, r, audit.EventRecordsExport, actor, entity, "", map[string]string{
		"rows": strconv.Itoa(rows),
	})
}
