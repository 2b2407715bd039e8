package controllers

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/ctx"
	"github.com/shashiranjanraj/bgfixture/pkg/filters"
)

type SubscriptionController struct {
	bg *background.Background
}

func NewSubscriptionController(bg *background.Background) *SubscriptionController {
	return &SubscriptionController{bg: bg}
}

func (ctl *SubscriptionController) Index(c *ctx.Context) {
	c.Success(view(ctl.bg, c).Storage.Subscriptions())
}

// Store adds a subscription: 201 when it is new, 200 when already known.
func (ctl *SubscriptionController) Store(c *ctx.Context) {
	var in filters.SubscriptionInput
	if !c.BindJSON(&in) {
		return
	}

	storage := view(ctl.bg, c).Storage
	built := filters.SubscriptionFromURL(in.URL, nil)
	changed, err := storage.AddSubscription(built)
	warnListeners(c, "subscription.add", err)

	// A listener may already have removed it again.
	sub, ok := storage.Known(in.URL)
	if !ok {
		sub = built
	}
	if changed {
		c.Created(sub)
		return
	}
	c.Success(sub)
}

// Destroy removes the subscription named by ?url=.
func (ctl *SubscriptionController) Destroy(c *ctx.Context) {
	sub, err := removeSubscription(c, view(ctl.bg, c).Storage, c.Query("url"))
	if errors.Is(err, filters.ErrNotFound) {
		c.NotFound(err.Error())
		return
	}
	c.Success(sub)
}

func removeSubscription(c *ctx.Context, storage *filters.Storage, url string) (*filters.Subscription, error) {
	sub, ok := storage.Known(url)
	if !ok {
		return nil, fmt.Errorf("subscription %q: %w", url, filters.ErrNotFound)
	}
	changed, err := storage.RemoveSubscription(sub)
	warnListeners(c, "subscription.remove", err)
	if !changed {
		return nil, fmt.Errorf("subscription %q: %w", url, filters.ErrNotFound)
	}
	return sub, nil
}

