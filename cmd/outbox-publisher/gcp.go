package main

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

func wrapGCPPublisher(p *gcppubsub.Publisher) topicPublisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{inner: p}
}

type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) pendingPublish {
	if p == nil || p.inner == nil {
		return nil
	}
	return &gcpPending{inner: p.inner.Publish(ctx, msg)}
}

type gcpPending struct {
	inner *gcppubsub.PublishResult
}

func (r *gcpPending) Get(ctx context.Context) (string, error) {
	if r == nil || r.inner == nil {
		return "", errors.New("publish result is nil")
	}
	return r.inner.Get(ctx)
}
