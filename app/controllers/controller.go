// Package controllers serves the fixture's HTTP API. Every handler works on
// the View built from its own request's query string, over the storage and
// notifier the whole process shares.
package controllers

import (
	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/ctx"
	"github.com/shashiranjanraj/bgfixture/pkg/logger"
)

const viewKey = "view"

// view returns the request's View, building it on first use.
func view(bg *background.Background, c *ctx.Context) *background.View {
	if v, ok := c.Get(viewKey); ok {
		return v.(*background.View)
	}
	v := bg.View(c.QueryValues())
	c.Set(viewKey, v)
	return v
}

// warnListeners logs listener failures. The storage change they followed
// has already happened, so the request still succeeds.
func warnListeners(c *ctx.Context, op string, err error) {
	if err != nil {
		logger.WithCtx(c.Context()).Warn("listener failed", "op", op, "error", err)
	}
}
