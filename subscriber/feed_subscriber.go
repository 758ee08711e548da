package subscriber

import (
	"context"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/Xaroyw/ArtCore/events"
	natsClient "github.com/Xaroyw/ArtCore/nats"
	"github.com/Xaroyw/ArtCore/service"
)

// FeedSubscriber drops the cached feed scan whenever any instance
// publishes or deletes a post.
type FeedSubscriber struct {
	natsClient *natsClient.Client
	feed       *service.FeedService
	ctx        context.Context

	subs []*nats.Subscription
}

func NewFeedSubscriber(natsClient *natsClient.Client, feed *service.FeedService, ctx context.Context) *FeedSubscriber {
	return &FeedSubscriber{
		natsClient: natsClient,
		feed:       feed,
		ctx:        ctx,
	}
}

func (s *FeedSubscriber) Start() error {
	created, err := s.natsClient.Subscribe(events.PostCreated, func(msg *nats.Msg) {
		var event events.PostCreatedEvent
		if err := natsClient.DecodeEvent(msg, &event); err != nil {
			log.Printf("Error decoding post created event: %v", err)
			return
		}
		s.feed.InvalidateCache(s.ctx)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, created)

	deleted, err := s.natsClient.Subscribe(events.PostDeleted, func(msg *nats.Msg) {
		var event events.PostDeletedEvent
		if err := natsClient.DecodeEvent(msg, &event); err != nil {
			log.Printf("Error decoding post deleted event: %v", err)
			return
		}
		s.feed.InvalidateCache(s.ctx)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, deleted)

	log.Println("Feed subscriber started successfully")
	return nil
}

func (s *FeedSubscriber) Stop() {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("Error unsubscribing: %v", err)
		}
	}
	s.subs = nil
}
