package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
		from   int64
		to     int64
	}{
		{name: "valid", body: `{"from":1,"to":20}`, from: 1, to: 20},
		{name: "zero is a valid bound", body: `{"from":0,"to":0}`, from: 0, to: 0},
		{name: "missing from", body: `{"to":20}`, errMsg: "from is required"},
		{name: "missing both", body: `{}`, errMsg: "from is required; to is required"},
		{name: "malformed json", body: `{"from":`, errMsg: "invalid request body"},
		{name: "wrong type", body: `{"from":"1","to":2}`, errMsg: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst RangeRequest
			err := DecodeAndValidate(req, &dst)
			if tt.errMsg != "" {
				require.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.from, *dst.From)
			require.Equal(t, tt.to, *dst.To)
		})
	}
}
