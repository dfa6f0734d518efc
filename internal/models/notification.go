package models

import (
	"time"
)

const (
	NotificationKindSuccess = "success"
	NotificationKindInfo    = "info"
	NotificationKindWarning = "warning"
)

type Notification struct {
	ID          string
	ToAccount   string
	FromAccount *string
	Kind        string
	Title       string
	Message     string
	Details     string
	ReadAt      *time.Time
	CreatedAt   time.Time
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NotificationPage is one page of an account's notifications, newest first.
type NotificationPage struct {
	Notifications []*Notification
	Total         int
	Page          int
	PageSize      int
	TotalPages    int
	NextPage      *int
}
