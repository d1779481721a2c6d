package gateway

import (
	"context"

	"github.com/machinebox/graphql"

	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

const myProfileQuery = `query my_profile {
  my_profile {
    id
    user_id
    email
    biodata {
      email
      salutation
      surname
      other_names
    }
    last_logged_in {
      logged_in
    }
    role {
      id: role_id
      role_name
      _modules {
        id
        title
        route
        logo
      }
    }
  }
}`

// FetchMyProfile resolves the administrator owning token. An empty profile
// means the backend no longer recognises the session.
func (c *Client) FetchMyProfile(ctx context.Context, token string) (*models.Profile, error) {
	var resp profileEnvelope
	if err := c.run(ctx, "my_profile", token, graphql.NewRequest(myProfileQuery), &resp); err != nil {
		return nil, err
	}
	if resp.MyProfile == nil || resp.MyProfile.ID.String() == "" {
		return nil, appErrors.Clone(appErrors.ErrAuthFailed, "profile not found for session")
	}
	if err := c.check("my_profile", resp.MyProfile); err != nil {
		return nil, err
	}
	profile := resp.MyProfile.toModel()
	return &profile, nil
}
