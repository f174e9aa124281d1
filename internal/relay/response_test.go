package relay

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fundboard/fundboard/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestResponse_Err(t *testing.T) {
	tests := []struct {
		resp Response
		want *core.Error
	}{
		{Rejected("host evil.example.com is not allowed"), core.ErrRelayRejected},
		{Blocked(403, []byte("<html>")), core.ErrUpstreamBlocked},
		{InvalidJSON([]byte("oops")), core.ErrUpstreamMalformed},
		{UpstreamError(404), core.ErrUpstreamHTTP},
		{NetworkFailure("connection refused"), core.ErrNetworkFailure},
	}

	for _, tc := range tests {
		err := tc.resp.Err()
		assert.True(t, errors.Is(err, tc.want), "%s: expected %v, got %v", tc.resp.Kind, tc.want, err)
		assert.False(t, tc.resp.OK())
	}

	ok := Success([]byte(`{}`))
	assert.True(t, ok.OK())
	assert.NoError(t, ok.Err())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "success", KindSuccess.String())
	assert.Equal(t, "blocked", KindBlocked.String())
	assert.Equal(t, "network_failure", KindNetworkFailure.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestPreview_Truncates(t *testing.T) {
	body := strings.Repeat("ç", 500)
	p := Preview([]byte(body))
	assert.Equal(t, 200, utf8.RuneCountInString(p))

	assert.Equal(t, "short", Preview([]byte("short")))
}

func TestPreview_DropsInvalidUTF8(t *testing.T) {
	p := Preview([]byte{'a', 0xff, 'b'})
	assert.Equal(t, "ab", p)
}
