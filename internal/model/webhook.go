package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	EventUserCreated  = "user.created"
	EventUserLogin    = "user.login"
	EventTokenRefresh = "token.refresh"
	EventUserUpdated  = "user.updated"
)

// KnownEvents : события, на которые можно подписаться
var KnownEvents = []string{EventUserCreated, EventUserLogin, EventTokenRefresh, EventUserUpdated}

type Webhook struct {
	UUID          string         `db:"uuid" json:"id"`
	URL           string         `db:"url" json:"url"`
	Events        pq.StringArray `db:"events" json:"events"`
	Secret        string         `db:"secret" json:"-"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	CreatedBy     string         `db:"created_by" json:"created_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	LastTriggered *time.Time     `db:"last_triggered" json:"last_triggered,omitempty"`
	TriggerCount  int            `db:"trigger_count" json:"trigger_count"`
}

// WebhookPayload : тело POST запроса к вебхуку
type WebhookPayload struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	User      WebhookUser    `json:"user"`
	Data      map[string]any `json:"data,omitempty"`
}

type WebhookUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}
