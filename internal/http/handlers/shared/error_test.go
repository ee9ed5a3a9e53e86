package shared

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clickpulse/internal/http/response"

	"github.com/gin-gonic/gin"
)

var errTestInvalid = errors.New("invalid")

func TestRespondMappedError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rules := []MappedError{{Target: errTestInvalid, Code: response.CodeBadRequest, Msg: "bad input"}}

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "mapped", err: fmt.Errorf("wrap: %w", errTestInvalid), want: `"status_code":400`},
		{name: "app error", err: response.WrapError(response.CodeServiceUnavailable, "busy", nil), want: `"status_code":503`},
		{name: "fallback", err: errors.New("boom"), want: `"status_code":500`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set("request_id", "req-1")

			RespondMappedError(c, tc.err, rules, response.CodeInternal, "internal error")
			if !strings.Contains(w.Body.String(), tc.want) {
				t.Fatalf("want %s in %s", tc.want, w.Body.String())
			}
		})
	}
}
