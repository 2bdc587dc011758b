package lti

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGradeXML(t *testing.T) {
	body, err := BuildGradeXML("msg-1", "sourced-1", 0.88)
	require.NoError(t, err)

	xml := string(body)
	assert.Contains(t, xml, "<imsx_POXEnvelopeRequest")
	assert.Contains(t, xml, `xmlns="http://www.imsglobal.org/services/ltiv1p1/xsd/imsoms_v1p0"`)
	assert.Contains(t, xml, "<imsx_version>V1.0</imsx_version>")
	assert.Contains(t, xml, "<imsx_messageIdentifier>msg-1</imsx_messageIdentifier>")
	assert.Contains(t, xml, "<sourcedId>sourced-1</sourcedId>")
	assert.Contains(t, xml, "<textString>0.88</textString>")
	assert.Contains(t, xml, "<language>en</language>")
	assert.Contains(t, xml, "<replaceResultRequest>")
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "0.88", FormatScore(0.88))
	assert.Equal(t, "1", FormatScore(1))
	assert.Equal(t, "0", FormatScore(0))
	assert.Equal(t, "0.5", FormatScore(0.5))
}

func TestOutcomeAuthorizationDeterministic(t *testing.T) {
	provider := NewProvider("consumer-key", "secret", "https://trainer.example.edu")
	body, err := BuildGradeXML("msg-1", "sourced-1", 0.88)
	require.NoError(t, err)

	first := provider.OutcomeAuthorization("https://lms.example.edu/outcomes", body, 1700000000, "nonce1")
	second := provider.OutcomeAuthorization("https://lms.example.edu/outcomes", body, 1700000000, "nonce1")

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "OAuth "))
	assert.Contains(t, first, `oauth_consumer_key="consumer-key"`)
	assert.Contains(t, first, "oauth_body_hash=")
	assert.Contains(t, first, "oauth_signature=")
}

func TestOutcomeAuthorizationCoversBody(t *testing.T) {
	provider := NewProvider("consumer-key", "secret", "https://trainer.example.edu")

	bodyA, err := BuildGradeXML("msg-1", "sourced-1", 0.88)
	require.NoError(t, err)
	bodyB, err := BuildGradeXML("msg-1", "sourced-1", 0.5)
	require.NoError(t, err)

	authA := provider.OutcomeAuthorization("https://lms.example.edu/outcomes", bodyA, 1700000000, "nonce1")
	authB := provider.OutcomeAuthorization("https://lms.example.edu/outcomes", bodyB, 1700000000, "nonce1")

	// a different score must change the body hash and with it the signature
	assert.NotEqual(t, authA, authB)
}

func TestSendGrade(t *testing.T) {
	var received struct {
		authorization string
		contentType   string
		body          string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.authorization = r.Header.Get("Authorization")
		received.contentType = r.Header.Get("Content-Type")
		buf, _ := io.ReadAll(r.Body)
		received.body = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := NewProvider("consumer-key", "secret", "https://trainer.example.edu")

	assert.True(t, provider.SendGrade(server.URL, "sourced-1", 0.88))
	assert.Equal(t, "application/xml", received.contentType)
	assert.True(t, strings.HasPrefix(received.authorization, "OAuth "))
	assert.Contains(t, received.authorization, "oauth_body_hash=")
	assert.Contains(t, received.body, "<textString>0.88</textString>")
}

func TestSendGradeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewProvider("consumer-key", "secret", "https://trainer.example.edu")

	assert.False(t, provider.SendGrade(server.URL, "sourced-1", 0.88))
}

func TestSendGradeUnreachable(t *testing.T) {
	provider := NewProvider("consumer-key", "secret", "https://trainer.example.edu")

	assert.False(t, provider.SendGrade("http://127.0.0.1:1/outcomes", "sourced-1", 0.88))
}

func TestSendGradeMissingBinding(t *testing.T) {
	provider := NewProvider("consumer-key", "secret", "https://trainer.example.edu")

	assert.False(t, provider.SendGrade("", "sourced-1", 0.88))
	assert.False(t, provider.SendGrade("https://lms.example.edu/outcomes", "", 0.88))
}
