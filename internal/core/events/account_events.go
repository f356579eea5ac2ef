package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered  = "user.registered"
	EventTypeUserDeactivated = "user.deactivated"
)

type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	RoleID int64  `json:"role_id"`
}

func NewUserRegisteredEvent(userID int64, email, name string, roleID int64) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
				"name":    name,
				"role_id": roleID,
			},
		},
		UserID: userID,
		Email:  email,
		Name:   name,
		RoleID: roleID,
	}
}

type UserDeactivatedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	ByUser int64  `json:"by_user"`
}

func NewUserDeactivatedEvent(userID int64, email string, byUser int64) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeactivated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
				"by_user": byUser,
			},
		},
		UserID: userID,
		Email:  email,
		ByUser: byUser,
	}
}
