package controllers

import (
	"github.com/shashiranjanraj/bgfixture/pkg/background"
	"github.com/shashiranjanraj/bgfixture/pkg/ctx"
	"github.com/shashiranjanraj/bgfixture/pkg/filters"
)

type FilterController struct {
	bg *background.Background
}

func NewFilterController(bg *background.Background) *FilterController {
	return &FilterController{bg: bg}
}

// Index lists the filters of the custom subscription.
func (ctl *FilterController) Index(c *ctx.Context) {
	c.Success(view(ctl.bg, c).Storage.Filters())
}

// Store validates and adds a filter. A page loaded with filterError gets a
// 422 for every filter.
func (ctl *FilterController) Store(c *ctx.Context) {
	var in filters.FilterInput
	if !c.BindJSON(&in) {
		return
	}

	v := view(ctl.bg, c)
	res := v.Validator.ParseFilter(in.Text)
	if res.Error != "" {
		c.ValidationError(map[string]string{"text": res.Error})
		return
	}

	changed, err := v.Storage.AddFilter(res.Filter)
	warnListeners(c, "filter.add", err)
	if changed {
		c.Created(res.Filter)
		return
	}
	c.Success(res.Filter)
}

// Destroy removes the filter given by ?text=.
func (ctl *FilterController) Destroy(c *ctx.Context) {
	f := filters.FromText(c.Query("text"))
	if f.Text == "" {
		c.ValidationError(map[string]string{"text": "The text field is required."})
		return
	}

	changed, err := view(ctl.bg, c).Storage.RemoveFilter(f)
	warnListeners(c, "filter.remove", err)
	if !changed {
		c.NotFound("filter " + f.Text + " not found")
		return
	}
	c.Success(f)
}

type parseInput struct {
	Text string `json:"text" validate:"max=1048576"`
}

// Parse runs the page's validator over a newline-separated list.
func (ctl *FilterController) Parse(c *ctx.Context) {
	var in parseInput
	if !c.BindJSON(&in) {
		return
	}
	c.Success(view(ctl.bg, c).Validator.ParseFilters(in.Text))
}
