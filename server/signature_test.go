package server

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

// signTwilio signs a webhook the way Twilio does: HMAC-SHA1 over the URL
// followed by each parameter name and value, sorted by name.
func signTwilio(authToken, fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := fullURL
	for _, k := range keys {
		data += k + params.Get(k)
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	_, _ = mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	params := url.Values{"CallSid": {"CA1"}, "SpeechResult": {"one two three"}}
	fullURL := "https://calls.example.com/gather?stage=verify_order"
	sig := signTwilio("token", fullURL, params)

	v := NewSignatureValidator("token")
	assert.NoError(t, v.Verify(sig, fullURL, params))
	assert.ErrorIs(t, NewSignatureValidator("other").Verify(sig, fullURL, params), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(sig, fullURL+"&x=1", params), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(sig, fullURL, url.Values{"CallSid": {"CA2"}}), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify("", fullURL, params), ErrMissingSignature)
}

func TestVerifySignatureParamOrder(t *testing.T) {
	v := NewSignatureValidator("token")
	sig := signTwilio("token", "https://x.example.com/voice", url.Values{"A": {"1"}, "B": {"2"}})

	assert.NoError(t, v.Verify(sig, "https://x.example.com/voice", url.Values{"B": {"2"}, "A": {"1"}}))
}

func TestVerifySignaturePortVariants(t *testing.T) {
	v := NewSignatureValidator("token")
	params := url.Values{"CallSid": {"CA1"}}

	// Twilio signed with an explicit port, the configured base URL has none
	sig := signTwilio("token", "https://calls.example.com:443/voice", params)
	assert.NoError(t, v.Verify(sig, "https://calls.example.com/voice", params))

	// and the other way round
	sig = signTwilio("token", "https://calls.example.com/voice", params)
	assert.NoError(t, v.Verify(sig, "https://calls.example.com:443/voice", params))
}
