package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	newRouter := func(enabled bool, allowed []string) *gin.Engine {
		router := gin.New()
		router.GET("/swagger/*any", SwaggerProtection(enabled, allowed), okHandler)
		return router
	}
	request := func(remoteAddr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = remoteAddr
		return req
	}

	tests := []struct {
		name    string
		enabled bool
		allowed []string
		remote  string
		status  int
	}{
		{"disabled hides docs", false, nil, "127.0.0.1:1234", http.StatusNotFound},
		{"enabled without allowlist", true, nil, "203.0.113.9:1234", http.StatusOK},
		{"exact ip allowed", true, []string{"10.0.0.5"}, "10.0.0.5:1234", http.StatusOK},
		{"cidr allowed", true, []string{"192.168.0.0/16"}, "192.168.4.20:1234", http.StatusOK},
		{"outside allowlist", true, []string{"10.0.0.5", "192.168.0.0/16"}, "203.0.113.9:1234", http.StatusForbidden},
		{"invalid entries are ignored", true, []string{"nonsense", "bad/cidr"}, "10.0.0.5:1234", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newRouter(tt.enabled, tt.allowed), request(tt.remote))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
