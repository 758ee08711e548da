package publisher

import (
	"encoding/json"
	"log"

	"github.com/Xaroyw/ArtCore/events"
	natsClient "github.com/Xaroyw/ArtCore/nats"
)

type EventPublisher struct {
	nats *natsClient.Client
}

func NewEventPublisher(nats *natsClient.Client) *EventPublisher {
	return &EventPublisher{nats: nats}
}

func (p *EventPublisher) PublishPostCreated(event events.PostCreatedEvent) error {
	return p.publish(events.PostCreated, event)
}

func (p *EventPublisher) PublishPostDeleted(event events.PostDeletedEvent) error {
	return p.publish(events.PostDeleted, event)
}

func (p *EventPublisher) PublishProfileUpdated(event events.ProfileUpdatedEvent) error {
	return p.publish(events.ProfileUpdated, event)
}

func (p *EventPublisher) publish(subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.nats.Publish(subject, data); err != nil {
		return err
	}

	log.Printf("Published event: %s", subject)
	return nil
}
