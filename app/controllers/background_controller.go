package controllers

import (
	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/ctx"
	"github.com/shashiranjanraj/bgfixture/pkg/filters"
	"github.com/shashiranjanraj/bgfixture/pkg/fixture"
)

// BackgroundController answers the read-only questions a UI page asks at
// startup.
type BackgroundController struct {
	bg *background.Background
}

func NewBackgroundController(bg *background.Background) *BackgroundController {
	return &BackgroundController{bg: bg}
}

// Info is the host application description, with query overrides.
func (ctl *BackgroundController) Info(c *ctx.Context) {
	c.Success(view(ctl.bg, c).Info)
}

// Params are the parsed fixture switches for this request.
func (ctl *BackgroundController) Params(c *ctx.Context) {
	c.Success(view(ctl.bg, c).Params)
}

func (ctl *BackgroundController) Modules(c *ctx.Context) {
	c.Success(ctl.bg.Modules().Names())
}

func (ctl *BackgroundController) Prefs(c *ctx.Context) {
	prefs, err := ctl.bg.Require(background.ModulePrefs)
	if err != nil {
		c.NotFound(err.Error())
		return
	}
	c.Success(prefs)
}

func (ctl *BackgroundController) DocLink(c *ctx.Context) {
	c.Success(map[string]string{
		"link": c.Param("link"),
		"url":  filters.DocLink(c.Param("link")),
	})
}

type matchQuery struct {
	URL        string `json:"url"    validate:"required,url,max=2048"`
	Type       string `json:"type"   validate:"max=64"`
	Domain     string `json:"domain" validate:"max=253"`
	ThirdParty bool   `json:"thirdParty"`
}

// Matches reports whether the page's matcher blocks a URL.
func (ctl *BackgroundController) Matches(c *ctx.Context) {
	q := matchQuery{
		URL:        c.Query("url"),
		Type:       c.Query("type"),
		Domain:     c.Query("domain"),
		ThirdParty: fixture.Truthy(c.Query("thirdParty")),
	}
	if !c.Validate(q) {
		return
	}

	f := view(ctl.bg, c).Matcher.MatchesAny(q.URL, q.Type, q.Domain, q.ThirdParty)
	c.Success(map[string]any{
		"url":        q.URL,
		"thirdParty": q.ThirdParty,
		"blocked":    f != nil,
		"filter":     f,
	})
}
