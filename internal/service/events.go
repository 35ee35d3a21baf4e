package service

import (
	"context"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/events"
)

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

func actorRef(actor *domain.StaffMember) *string {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}

func actorID(actor *domain.StaffMember) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
