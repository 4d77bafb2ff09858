// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/hrms/internal/app/store/audit"
	"github.com/dalemusser/hrms/internal/app/system/paging"
)

// eventRow is one audit event as shown to tenant owners.
type eventRow struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	UserID        string            `json:"user_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	Entity        string            `json:"entity,omitempty"`
	RecordID      string            `json:"record_id,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func toRow(e audit.Event) eventRow {
	row := eventRow{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		Entity:        e.Entity,
		RecordID:      e.RecordID,
		IP:            e.IP,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.UserID != nil {
		row.UserID = e.UserID.Hex()
	}
	if e.ActorID != nil {
		row.ActorID = e.ActorID.Hex()
	}
	return row
}

type listResponse struct {
	Data       []eventRow   `json:"data"`
	TotalCount int64        `json:"totalCount"`
	Range      paging.Range `json:"range"`
	Categories []string     `json:"categories"`
	EventTypes []string     `json:"event_types"`
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
	}
	recordEvents := []string{
		audit.EventRecordCreated,
		audit.EventRecordUpdated,
		audit.EventRecordDeleted,
		audit.EventRecordsExport,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryRecords:
		return recordEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(recordEvents))
		all = append(all, authEvents...)
		return append(all, recordEvents...)
	default:
		return nil
	}
}
