package lti

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"
)

// OAuth 1.0a HMAC-SHA1 request signing as used by LTI 1.1 launches and the
// Basic Outcomes service. The signing key is the shared secret followed by
// "&" (no token secret is exchanged in an LTI launch).

// SignParams computes the base64 HMAC-SHA1 signature over the normalized
// base string for the given request. The oauth_signature parameter, if
// present, is excluded from the base string.
func SignParams(secret, method, launchURL string, params map[string]string) string {
	base := baseString(method, launchURL, params)
	mac := hmac.New(sha1.New, []byte(secret+"&"))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the request signature and compares it to the
// supplied one in constant time.
func VerifySignature(secret, method, launchURL string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	computed := SignParams(secret, method, launchURL, params)
	return hmac.Equal([]byte(computed), []byte(signature))
}

// baseString builds the OAuth signature base string: the uppercased method,
// the encoded request URL and the encoded normalized parameter set, joined
// with "&".
func baseString(method, launchURL string, params map[string]string) string {
	return strings.Join([]string{
		strings.ToUpper(method),
		percentEncode(launchURL),
		percentEncode(normalizeParams(params)),
	}, "&")
}

// normalizeParams percent-encodes every key and value except oauth_signature,
// sorts by encoded key (value as tie-break) and joins them as key=value
// pairs. Sorting must compare keys, not the joined pairs: with keys like
// custom_a and custom_a1 the "=" separator would otherwise invert the order.
func normalizeParams(params map[string]string) string {
	type pair struct {
		key   string
		value string
	}
	pairs := make([]pair, 0, len(params))
	for key, value := range params {
		if key == "oauth_signature" {
			continue
		}
		pairs = append(pairs, pair{key: percentEncode(key), value: percentEncode(value)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + p.value
	}
	return strings.Join(parts, "&")
}

const upperhex = "0123456789ABCDEF"

// percentEncode applies RFC 3986 percent-encoding with !'()* additionally
// escaped, matching what LMS consumers produce.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}
