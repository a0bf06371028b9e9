package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/ordernotify/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_DecodeBody(t *testing.T) {
	type payload struct {
		OrderID string `json:"orderId"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"orderId":"ORD1"}`, want: "ORD1"},
		{name: "unknown fields ignored", body: `{"orderId":"ORD1","cart":[1,2]}`, want: "ORD1"},
		{name: "trailing whitespace", body: "{\"orderId\":\"ORD1\"}\n  ", want: "ORD1"},
		{name: "malformed", body: `{"orderId":`, wantErr: true},
		{name: "second document", body: `{"orderId":"A"}{"orderId":"B"}`, wantErr: true},
		{name: "trailing garbage", body: `{"orderId":"A"} x`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}
			var got payload

			// Act
			err := req.DecodeBody(&got)

			// Assert
			if tt.wantErr {
				gerr, ok := goerror.As(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadRequest, gerr.StatusCode())
				assert.Equal(t, "Invalid request body", gerr.Msg())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.OrderID)
		})
	}
}
