package lti

import (
	"errors"
	"fmt"
	"strings"

	"roleplay/models"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidLaunch is returned when neither launch credential validates.
// Callers answer it with HTTP 401.
var ErrInvalidLaunch = errors.New("invalid LTI launch")

// LTI 1.3 claim names for context, resource link, roles and basic outcomes.
const (
	claimRoles        = "https://purl.imsglobal.org/spec/lti/claim/roles"
	claimContext      = "https://purl.imsglobal.org/spec/lti/claim/context"
	claimResourceLink = "https://purl.imsglobal.org/spec/lti/claim/resource_link"
	claimBasicOutcome = "https://purl.imsglobal.org/spec/lti-bo/claim/basicoutcome"
)

// LaunchIdentity is the canonical result of a validated launch, regardless of
// which protocol carried it. Produced once per launch; the caller upserts the
// User from it.
type LaunchIdentity struct {
	ExternalUserID    string
	Name              string
	Email             string
	Role              string
	ContextID         string
	ResourceLinkID    string
	OutcomeServiceURL string
	ResultSourcedID   string
}

// Provider validates inbound launches and signs outbound grade reports for
// one LMS consumer key/secret pair.
type Provider struct {
	Key    string
	Secret string
	AppURL string

	client *resty.Client
}

func NewProvider(key, secret, appURL string) *Provider {
	return &Provider{
		Key:    key,
		Secret: secret,
		AppURL: strings.TrimRight(appURL, "/"),
		client: resty.New().SetTimeout(outcomeRequestTimeout),
	}
}

// Authenticate validates a launch request. A token credential takes
// precedence; otherwise an OAuth signature is required. Pure validation: no
// side effects, the caller persists the user.
func (p *Provider) Authenticate(method, launchURL string, params map[string]string) (*LaunchIdentity, error) {
	if token := params["id_token"]; token != "" {
		claims, err := ValidateToken(token, p.Secret)
		if err != nil {
			return nil, err
		}
		return identityFromClaims(claims), nil
	}

	if signature := params["oauth_signature"]; signature != "" {
		if !VerifySignature(p.Secret, method, launchURL, params, signature) {
			return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidLaunch)
		}
		return identityFromParams(params), nil
	}

	return nil, fmt.Errorf("%w: no credential supplied", ErrInvalidLaunch)
}

// identityFromParams maps a validated LTI 1.1 parameter set.
func identityFromParams(params map[string]string) *LaunchIdentity {
	name := params["lis_person_name_full"]
	if name == "" {
		name = "Unknown User"
	}
	return &LaunchIdentity{
		ExternalUserID:    params["user_id"],
		Name:              name,
		Email:             params["lis_person_contact_email_primary"],
		Role:              ClassifyRole(params["roles"]),
		ContextID:         params["context_id"],
		ResourceLinkID:    params["resource_link_id"],
		OutcomeServiceURL: params["lis_outcome_service_url"],
		ResultSourcedID:   params["lis_result_sourcedid"],
	}
}

// identityFromClaims maps a validated id_token claim set.
func identityFromClaims(claims jwt.MapClaims) *LaunchIdentity {
	identity := &LaunchIdentity{
		ExternalUserID: stringClaim(claims, "sub"),
		Name:           stringClaim(claims, "name"),
		Email:          stringClaim(claims, "email"),
		Role:           ClassifyRole(rolesClaim(claims)),
	}
	if identity.Name == "" {
		identity.Name = "Unknown User"
	}

	if ctx, ok := claims[claimContext].(map[string]interface{}); ok {
		identity.ContextID, _ = ctx["id"].(string)
	}
	if link, ok := claims[claimResourceLink].(map[string]interface{}); ok {
		identity.ResourceLinkID, _ = link["id"].(string)
	}
	if outcome, ok := claims[claimBasicOutcome].(map[string]interface{}); ok {
		identity.OutcomeServiceURL, _ = outcome["lis_outcome_service_url"].(string)
		identity.ResultSourcedID, _ = outcome["lis_result_sourcedid"].(string)
	}
	return identity
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)
	return value
}

// rolesClaim flattens the roles claim, which may be a single string or a
// list of role URIs, into one comma-separated string.
func rolesClaim(claims jwt.MapClaims) string {
	switch v := claims[claimRoles].(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	}
	return stringClaim(claims, "roles")
}

// ClassifyRole maps an LMS role claim string to a local role. The claim may
// carry several comma or space separated role URIs. Precedence is
// admin > instructor > student: an explicit admin grant outranks a
// simultaneous instructor one.
func ClassifyRole(rolesString string) string {
	roles := strings.ToLower(rolesString)
	switch {
	case strings.Contains(roles, "admin"):
		return models.RoleAdmin
	case strings.Contains(roles, "instructor"), strings.Contains(roles, "teacher"):
		return models.RoleInstructor
	default:
		return models.RoleStudent
	}
}
