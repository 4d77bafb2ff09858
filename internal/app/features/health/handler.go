package health

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	AppName string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
func NewHandler(client *mongo.Client, appName string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		AppName: appName,
		Log:     logger,
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	Application string `json:"application,omitempty"`
	Database    string `json:"database"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		Application: h.AppName,
		Database:    "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		uierrors.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, resp)
}
