package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bgfixture/config"
	"github.com/shashiranjanraj/bgfixture/pkg/bind"
)

type filterInput struct {
	Text string `json:"text" validate:"required,max=20"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestJSON_Valid(t *testing.T) {
	var in filterInput
	errs, err := bind.JSON(post(`{"text":"||ads.test^"}`), &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, "||ads.test^", in.Text)
}

func TestJSON_ValidationErrors(t *testing.T) {
	var in filterInput
	errs, err := bind.JSON(post(`{"text":""}`), &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "text")
}

func TestJSON_Malformed(t *testing.T) {
	var in filterInput
	_, err := bind.JSON(post(`{"text":`), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestJSON_TooLarge(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "8")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	var in filterInput
	_, err := bind.JSON(post(`{"text":"far too long for the limit"}`), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
