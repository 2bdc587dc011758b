package ltiController

import (
	"errors"
	"fmt"
	"log"
	"net/url"

	"roleplay/lti"
	"roleplay/middleware"
	"roleplay/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Controller struct {
	DB       *gorm.DB
	Provider *lti.Provider
}

func NewController(db *gorm.DB, provider *lti.Provider) *Controller {
	return &Controller{DB: db, Provider: provider}
}

// Launch handles the form-encoded launch POST from the LMS. On success the
// user is upserted and redirected by role; on failure the attempt is recorded
// and the LMS gets a 401.
func (ctl *Controller) Launch(c *fiber.Ctx) error {
	params := map[string]string{}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})

	// Proxies rewrite Host, so the configured public URL is authoritative
	// for signature reconstruction.
	launchURL := ctl.Provider.AppURL + c.Path()

	identity, err := ctl.Provider.Authenticate(fiber.MethodPost, launchURL, params)
	if err != nil {
		log.Printf("LTI launch rejected: %v", err)
		ctl.recordLaunch(nil, params["context_id"], params["resource_link_id"], launchURL,
			params["lis_outcome_service_url"], params["lis_result_sourcedid"], err)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid LTI launch!", nil)
	}

	if identity.ExternalUserID == "" {
		ctl.recordLaunch(nil, identity.ContextID, identity.ResourceLinkID, launchURL,
			identity.OutcomeServiceURL, identity.ResultSourcedID, errors.New("launch has no user identifier"))
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid LTI launch!", nil)
	}

	user, err := ctl.upsertUser(identity)
	if err != nil {
		log.Printf("Failed to upsert launch user %s: %v", identity.ExternalUserID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process launch!", nil)
	}

	ctl.recordLaunch(&user.ID, identity.ContextID, identity.ResourceLinkID, launchURL,
		identity.OutcomeServiceURL, identity.ResultSourcedID, nil)

	query := url.Values{}
	query.Set("user_id", fmt.Sprintf("%d", user.ID))
	query.Set("context_id", identity.ContextID)
	query.Set("resource_link_id", identity.ResourceLinkID)

	target := "/select-scenario"
	if user.Role == models.RoleInstructor || user.Role == models.RoleAdmin {
		target = "/admin"
	}
	return c.Redirect(target+"?"+query.Encode(), fiber.StatusFound)
}

// upsertUser creates the user on first launch and refreshes name, email and
// role on subsequent ones.
func (ctl *Controller) upsertUser(identity *lti.LaunchIdentity) (*models.User, error) {
	var user models.User
	err := ctl.DB.Where("external_user_id = ?", identity.ExternalUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ExternalUserID: identity.ExternalUserID,
			Name:           identity.Name,
			Email:          identity.Email,
			Role:           identity.Role,
		}
		if err := ctl.DB.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	user.Name = identity.Name
	user.Email = identity.Email
	user.Role = identity.Role
	if err := ctl.DB.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// recordLaunch writes the audit row for a launch attempt. Failures to audit
// are logged, never surfaced.
func (ctl *Controller) recordLaunch(userID *uint, contextID, resourceLinkID, launchURL, outcomeURL, sourcedID string, launchErr error) {
	launch := models.LTILaunch{
		UserID:            userID,
		ContextID:         contextID,
		ResourceLinkID:    resourceLinkID,
		LaunchURL:         launchURL,
		OutcomeServiceURL: outcomeURL,
		ResultSourcedID:   sourcedID,
		Success:           launchErr == nil,
	}
	if launchErr != nil {
		launch.ErrorMessage = launchErr.Error()
	}
	if err := ctl.DB.Create(&launch).Error; err != nil {
		log.Printf("Failed to record LTI launch: %v", err)
	}
}
