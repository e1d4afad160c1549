package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/task-tracker/internal/flash"
)

// carry copies the flash cookie from a Set response onto a fresh
// request, the way a browser would across the redirect.
func carry(t *testing.T, from *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	for _, c := range from.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestFlash_SetAndTake(t *testing.T) {
	setRec := httptest.NewRecorder()
	flash.Success(setRec, "User created")

	takeRec := httptest.NewRecorder()
	notice := flash.Take(takeRec, carry(t, setRec))

	require.NotNil(t, notice)
	assert.Equal(t, flash.KindSuccess, notice.Kind)
	assert.Equal(t, "User created", notice.Message)
}

func TestFlash_TakeClearsCookie(t *testing.T) {
	setRec := httptest.NewRecorder()
	flash.Error(setRec, "Email already exists")

	takeRec := httptest.NewRecorder()
	require.NotNil(t, flash.Take(takeRec, carry(t, setRec)))

	cookies := takeRec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "flash", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge, "the cookie must expire after one read")
}

func TestFlash_TakeWithoutCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)

	assert.Nil(t, flash.Take(rec, req))
}

func TestFlash_TakeMangledCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: "flash", Value: "not-base64!"})

	assert.Nil(t, flash.Take(rec, req))
}
