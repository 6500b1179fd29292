package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypePayrollGenerated NotificationType = "payroll_generated"
	TypePayrollPaid      NotificationType = "payroll_paid"
	TypePayrollReminder  NotificationType = "payroll_reminder"
)

// Notification represents an in-app notification entity
type Notification struct {
	ID          string
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
