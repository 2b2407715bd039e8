package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/bgfixture/pkg/validate"
)

type matchQuery struct {
	URL    string `json:"url"    validate:"required,url"`
	Action string `json:"action" validate:"required,in=addFilter|removeFilter"`
	Text   string `json:"text"   validate:"required,max=10"`
	Limit  int    `json:"limit"  validate:"max=5"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(matchQuery{URL: "https://ads.test/x.js", Action: "addFilter", Text: "ads", Limit: 3})
	assert.False(t, validate.HasErrors(errs), errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(&matchQuery{Text: "   "})
	assert.Equal(t, "The url field is required.", errs["url"])
	assert.Equal(t, "The action field is required.", errs["action"])
	assert.Equal(t, "The text field is required.", errs["text"])
	assert.NotContains(t, errs, "limit")
}

func TestURLRule(t *testing.T) {
	for _, bad := range []string{"not a url", "~user~786254", "ftp://x.test/list.txt", "http://"} {
		errs := validate.Struct(matchQuery{URL: bad, Action: "addFilter", Text: "ok"})
		assert.Contains(t, errs, "url", bad)
	}
}

func TestMax(t *testing.T) {
	errs := validate.Struct(matchQuery{URL: "http://a.test", Action: "addFilter", Text: "abcdefghijk", Limit: 9})
	assert.Equal(t, "The text must not exceed 10 characters.", errs["text"])
	assert.Equal(t, "The limit must not be greater than 5.", errs["limit"])
}

func TestInRule(t *testing.T) {
	errs := validate.Struct(matchQuery{URL: "http://a.test", Text: "ok", Action: "explode"})
	assert.Equal(t, "The selected action is invalid.", errs["action"])
	assert.Len(t, errs, 1)
}

func TestFirst(t *testing.T) {
	assert.Empty(t, validate.First(nil))
	errs := validate.Struct(matchQuery{Text: "ok"})
	assert.Equal(t, "The action field is required.", validate.First(errs))
}

func TestNonStructIsIgnored(t *testing.T) {
	assert.Empty(t, validate.Struct("x"))
}
