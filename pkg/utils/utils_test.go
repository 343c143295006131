package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 5, ParseInt("", 5))
	assert.Equal(t, 5, ParseInt("abc", 5))
	assert.Equal(t, 12, ParseInt("12", 5))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitCSV("a, b,,c "))
	assert.Nil(t, SplitCSV(""))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		QuoteID string `json:"quoteId"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quoteId":"q1"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "q1", dst.QuoteID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quoteId":"q1","extra":1}`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quoteId":"q1"}{"quoteId":"q2"}`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
}

func TestDecodeOptionalJSON(t *testing.T) {
	type body struct {
		Reason string `json:"reason"`
	}
	tests := []struct {
		name    string
		payload string
		chunked bool
		want    string
		wantErr bool
	}{
		{"empty", "", false, "", false},
		{"empty chunked", "", true, "", false},
		{"whitespace chunked", "  \n", true, "", false},
		{"object chunked", `{"reason":"late"}`, true, "late", false},
		{"truncated", `{"reason":`, true, "", true},
		{"unknown field", `{"other":1}`, false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			if tt.chunked {
				req.ContentLength = -1
				req.TransferEncoding = []string{"chunked"}
			}
			var got body
			err := DecodeOptionalJSON(httptest.NewRecorder(), req, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Reason)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.NoError(t, DecodeOptionalJSON(httptest.NewRecorder(), req, &body{}))
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusConflict, "nope")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, w.Body.String())
}
