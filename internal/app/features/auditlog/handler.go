// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/hrms/internal/app/features/errors"
	"github.com/dalemusser/hrms/internal/app/store/audit"
	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Store  *audit.Store
	Meta   appmeta.Metadata
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an audit log feature handler bound to
// the given Mongo database and logger.
func NewHandler(db *mongo.Database, meta appmeta.Metadata, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  audit.New(db),
		Meta:   meta,
		Log:    logger,
		ErrLog: errLog,
	}
}
