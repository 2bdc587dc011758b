package lti

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const outcomeRequestTimeout = 10 * time.Second

// Basic Outcomes replaceResult envelope (IMS POX).
type poxEnvelope struct {
	XMLName xml.Name  `xml:"imsx_POXEnvelopeRequest"`
	XMLNS   string    `xml:"xmlns,attr"`
	Header  poxHeader `xml:"imsx_POXHeader"`
	Body    poxBody   `xml:"imsx_POXBody"`
}

type poxHeader struct {
	Info poxHeaderInfo `xml:"imsx_POXRequestHeaderInfo"`
}

type poxHeaderInfo struct {
	Version           string `xml:"imsx_version"`
	MessageIdentifier string `xml:"imsx_messageIdentifier"`
}

type poxBody struct {
	ReplaceResult replaceResultRequest `xml:"replaceResultRequest"`
}

type replaceResultRequest struct {
	Record resultRecord `xml:"resultRecord"`
}

type resultRecord struct {
	SourcedGUID sourcedGUID `xml:"sourcedGUID"`
	Result      poxResult   `xml:"result"`
}

type sourcedGUID struct {
	SourcedID string `xml:"sourcedId"`
}

type poxResult struct {
	Score resultScore `xml:"resultScore"`
}

type resultScore struct {
	Language   string `xml:"language"`
	TextString string `xml:"textString"`
}

// SendGrade reports a score in [0,1] back to the LMS outcome service against
// the given result record. Best effort: any transport failure or non-2xx
// response yields false, never an error.
func (p *Provider) SendGrade(outcomeServiceURL, resultSourcedID string, score float64) bool {
	if outcomeServiceURL == "" || resultSourcedID == "" {
		log.Println("Missing outcome service URL or sourcedId for grade passback")
		return false
	}

	body, err := BuildGradeXML(uuid.NewString(), resultSourcedID, score)
	if err != nil {
		log.Printf("Failed to build grade envelope: %v", err)
		return false
	}

	authorization := p.OutcomeAuthorization(outcomeServiceURL, body,
		time.Now().Unix(), strings.ReplaceAll(uuid.NewString(), "-", ""))

	resp, err := p.client.R().
		SetHeader("Content-Type", "application/xml").
		SetHeader("Authorization", authorization).
		SetBody(body).
		Post(outcomeServiceURL)
	if err != nil {
		log.Printf("Grade passback request failed: %v", err)
		return false
	}
	if !resp.IsSuccess() {
		log.Printf("Grade passback rejected: %d %s", resp.StatusCode(), resp.String())
		return false
	}
	return true
}

// BuildGradeXML renders the replaceResult envelope for one result record.
func BuildGradeXML(messageIdentifier, resultSourcedID string, score float64) ([]byte, error) {
	envelope := poxEnvelope{
		XMLNS: "http://www.imsglobal.org/services/ltiv1p1/xsd/imsoms_v1p0",
		Header: poxHeader{
			Info: poxHeaderInfo{
				Version:           "V1.0",
				MessageIdentifier: messageIdentifier,
			},
		},
		Body: poxBody{
			ReplaceResult: replaceResultRequest{
				Record: resultRecord{
					SourcedGUID: sourcedGUID{SourcedID: resultSourcedID},
					Result: poxResult{
						Score: resultScore{
							Language:   "en",
							TextString: FormatScore(score),
						},
					},
				},
			},
		},
	}

	raw, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), raw...), nil
}

// FormatScore renders a score as the decimal string the outcome service
// expects.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// OutcomeAuthorization builds the OAuth Authorization header for an outcome
// POST. The body is bound into the signature via oauth_body_hash, so the
// signature covers both the target URL and the payload. Deterministic for a
// fixed timestamp and nonce.
func (p *Provider) OutcomeAuthorization(serviceURL string, body []byte, timestamp int64, nonce string) string {
	bodyHash := sha1.Sum(body)

	params := map[string]string{
		"oauth_consumer_key":     p.Key,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(timestamp, 10),
		"oauth_nonce":            nonce,
		"oauth_version":          "1.0",
		"oauth_body_hash":        base64.StdEncoding.EncodeToString(bodyHash[:]),
	}

	signature := SignParams(p.Secret, "POST", serviceURL, params)

	return fmt.Sprintf(`OAuth oauth_consumer_key="%s", oauth_signature_method="HMAC-SHA1", oauth_timestamp="%s", oauth_nonce="%s", oauth_version="1.0", oauth_body_hash="%s", oauth_signature="%s"`,
		percentEncode(p.Key),
		params["oauth_timestamp"],
		percentEncode(nonce),
		percentEncode(params["oauth_body_hash"]),
		percentEncode(signature),
	)
}
