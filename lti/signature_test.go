package lti

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLaunchURL = "https://trainer.example.edu/api/lti/launch"

func launchParams() map[string]string {
	return map[string]string{
		"oauth_consumer_key":               "consumer-key",
		"oauth_signature_method":           "HMAC-SHA1",
		"oauth_timestamp":                  "1700000000",
		"oauth_nonce":                      "abc123",
		"oauth_version":                    "1.0",
		"user_id":                          "lms-user-42",
		"roles":                            "Learner",
		"context_id":                       "course-7",
		"resource_link_id":                 "link-9",
		"lis_person_name_full":             "Jamie Doe",
		"lis_person_contact_email_primary": "jamie@example.edu",
	}
}

func TestSignParamsDeterministic(t *testing.T) {
	params := launchParams()

	first := SignParams("secret", "POST", testLaunchURL, params)
	second := SignParams("secret", "POST", testLaunchURL, params)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	params := launchParams()
	signature := SignParams("secret", "POST", testLaunchURL, params)
	params["oauth_signature"] = signature

	assert.True(t, VerifySignature("secret", "POST", testLaunchURL, params, signature))
}

func TestVerifySignatureRejectsFlippedParam(t *testing.T) {
	params := launchParams()
	signature := SignParams("secret", "POST", testLaunchURL, params)

	for key := range launchParams() {
		tampered := launchParams()
		tampered[key] = tampered[key] + "x"
		assert.Falsef(t, VerifySignature("secret", "POST", testLaunchURL, tampered, signature),
			"flipping %s should invalidate the signature", key)
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	params := launchParams()
	signature := SignParams("secret", "POST", testLaunchURL, params)

	assert.False(t, VerifySignature("other-secret", "POST", testLaunchURL, params, signature))
}

func TestVerifySignatureRejectsEmptySignature(t *testing.T) {
	assert.False(t, VerifySignature("secret", "POST", testLaunchURL, launchParams(), ""))
}

func TestSignatureExcludesItselfFromBaseString(t *testing.T) {
	params := launchParams()
	signature := SignParams("secret", "POST", testLaunchURL, params)

	params["oauth_signature"] = signature
	resigned := SignParams("secret", "POST", testLaunchURL, params)

	assert.Equal(t, signature, resigned)
}

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "abcXYZ019-._~", percentEncode("abcXYZ019-._~"))
	assert.Equal(t, "a%20b", percentEncode("a b"))
	assert.Equal(t, "%21%27%28%29%2A", percentEncode("!'()*"))
	assert.Equal(t, "caf%C3%A9", percentEncode("café"))
	assert.Equal(t, "https%3A%2F%2Fexample.edu%2Fpath", percentEncode("https://example.edu/path"))
}

func TestBaseStringSortsParams(t *testing.T) {
	base := baseString("post", "https://example.edu/launch", map[string]string{
		"b": "2",
		"a": "1",
	})
	assert.Equal(t, "POST&https%3A%2F%2Fexample.edu%2Flaunch&a%3D1%26b%3D2", base)
}

func TestBaseStringSortsByKeyNotJoinedPair(t *testing.T) {
	// custom_a must precede custom_a1: keys are compared, not the joined
	// "key=value" strings, where "=" would sort custom_a after custom_a1
	base := baseString("POST", "https://example.edu/launch", map[string]string{
		"custom_a":  "z",
		"custom_a1": "b",
	})
	assert.Equal(t, "POST&https%3A%2F%2Fexample.edu%2Flaunch&custom_a%3Dz%26custom_a1%3Db", base)
}

func TestSignParamsMatchesKeySortedSigner(t *testing.T) {
	// reference signature produced by an independent signer that sorts the
	// parameter set by encoded key
	params := map[string]string{
		"custom_a":  "z",
		"custom_a1": "b",
	}
	signature := SignParams("secret", "POST", testLaunchURL, params)

	params["oauth_signature"] = signature
	assert.True(t, VerifySignature("secret", "POST", testLaunchURL, params, signature))

	mac := hmac.New(sha1.New, []byte("secret&"))
	mac.Write([]byte("POST&" + percentEncode(testLaunchURL) + "&" + percentEncode("custom_a=z&custom_a1=b")))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), signature)
}
