package models

import (
	"time"

	"github.com/google/uuid"
)

// Task priority and status values shared by all three task kinds.
const (
	PriorityExtreme  = "Extreme"
	PriorityHigh     = "High"
	PriorityModerate = "Moderate"
	PriorityLow      = "Low"

	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

var (
	Priorities = []string{PriorityExtreme, PriorityHigh, PriorityModerate, PriorityLow}
	Statuses   = []string{StatusNotStarted, StatusInProgress, StatusCompleted}
)

func ValidPriority(p string) bool { return contains(Priorities, p) }

func ValidStatus(s string) bool { return contains(Statuses, s) }

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// User is the stored account. PasswordHash never leaves the server; use
// Public for responses.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash *string
	GoogleID     *string
	FacebookID   *string
	Avatar       string
	Preferences  Preferences
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	TaskReminders      bool `json:"taskReminders"`
}

func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, PushNotifications: true, TaskReminders: true}
}

// HasPassword is false for accounts provisioned purely through OAuth.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

type PublicUser struct {
	ID          uuid.UUID   `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Avatar      string      `json:"avatar"`
	HasPassword bool        `json:"hasPassword"`
	Google      bool        `json:"googleLinked"`
	Facebook    bool        `json:"facebookLinked"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Username:    u.Username,
		Email:       u.Email,
		Avatar:      u.Avatar,
		HasPassword: u.HasPassword(),
		Google:      u.GoogleID != nil,
		Facebook:    u.FacebookID != nil,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// TaskBase holds the fields every task kind shares.
type TaskBase struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Task struct {
	TaskBase
	UserID   *uuid.UUID `json:"user,omitempty"`
	Category string     `json:"category"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
}

type VitalTask struct {
	TaskBase
	DetailedSteps []string `json:"detailedSteps"`
}

type MyTask struct {
	TaskBase
	Objective       string     `json:"objective"`
	TaskDescription string     `json:"taskDescription"`
	AdditionalNotes string     `json:"additionalNotes"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

// TaskKind names one of the three task collections.
type TaskKind string

const (
	KindTask      TaskKind = "task"
	KindVitalTask TaskKind = "vital"
	KindMyTask    TaskKind = "mytask"
)

// CategoryType discriminates the two category tables.
type CategoryType string

const (
	CategoryStatus   CategoryType = "status"
	CategoryPriority CategoryType = "priority"
)

// Category is a TaskStatus or TaskPriority label. Level is only set for
// priorities.
type Category struct {
	ID        uuid.UUID    `json:"id"`
	Type      CategoryType `json:"type"`
	Name      string       `json:"name"`
	Color     string       `json:"color"`
	Level     *int         `json:"level,omitempty"`
	IsDefault bool         `json:"isDefault"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

func ValidInvitationStatus(s string) bool {
	switch InvitationStatus(s) {
	case InvitationPending, InvitationAccepted, InvitationDeclined, InvitationExpired:
		return true
	}
	return false
}

type Invitation struct {
	ID         uuid.UUID        `json:"id"`
	Token      string           `json:"token"`
	Email      string           `json:"email"`
	InviterID  uuid.UUID        `json:"inviterId"`
	Message    string           `json:"message,omitempty"`
	Status     InvitationStatus `json:"status"`
	ExpiresAt  time.Time        `json:"expiresAt"`
	AcceptedAt *time.Time       `json:"acceptedAt,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Redeemable is true while the invitation is pending and not past expiry.
func (i *Invitation) Redeemable(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}
