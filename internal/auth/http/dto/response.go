package dto

import (
	"time"

	authDomain "github.com/questionit/api/internal/auth/domain"
	userDto "github.com/questionit/api/internal/user/http/dto"
)

// RequestHandshakeResponse carries the opaque handshake token.
type RequestHandshakeResponse struct {
	Token string `json:"token"`
}

// ApplicationSummary identifies an application without its key.
type ApplicationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// HandshakeDetailsResponse describes what the user is asked to approve.
type HandshakeDetailsResponse struct {
	Application ApplicationSummary `json:"application"`
	Rights      []string           `json:"rights"`
	CreatedAt   time.Time          `json:"created_at"`
}

// MapHandshakeDetailsToResponse converts handshake details to an API response.
func MapHandshakeDetailsToResponse(details *authDomain.HandshakeDetails) HandshakeDetailsResponse {
	return HandshakeDetailsResponse{
		Application: ApplicationSummary{Name: details.ApplicationName, URL: details.ApplicationURL},
		Rights:      details.Rights,
		CreatedAt:   details.CreatedAt,
	}
}

// ApproveHandshakeResponse holds one of three shapes: {validator, url}, {pin} or {denied}.
// Denied is the callback URL, or true for out-of-band handshakes.
type ApproveHandshakeResponse struct {
	Validator string `json:"validator,omitempty"`
	URL       string `json:"url,omitempty"`
	PIN       string `json:"pin,omitempty"`
	Denied    any    `json:"denied,omitempty"`
}

// MapApproveOutputToResponse converts an approval outcome to an API response.
func MapApproveOutputToResponse(output *authDomain.ApproveHandshakeOutput) ApproveHandshakeResponse {
	if output.Denied {
		if output.DeniedURL != "" {
			return ApproveHandshakeResponse{Denied: output.DeniedURL}
		}
		return ApproveHandshakeResponse{Denied: true}
	}
	return ApproveHandshakeResponse{
		Validator: output.Validator,
		URL:       output.URL,
		PIN:       output.PIN,
	}
}

// ExchangeHandshakeResponse contains the delegated credential.
// SECURITY: The token is only returned once and must be saved securely.
type ExchangeHandshakeResponse struct {
	Token     string                  `json:"token"`
	ExpiresAt time.Time               `json:"expires_at"`
	Rights    map[string]bool         `json:"rights"`
	User      userDto.ProfileResponse `json:"user"`
}

// MapExchangeOutputToResponse converts an exchange result to an API response.
func MapExchangeOutputToResponse(output *authDomain.ExchangeHandshakeOutput) ExchangeHandshakeResponse {
	return ExchangeHandshakeResponse{
		Token:     output.Token,
		ExpiresAt: output.ExpiresAt,
		Rights:    authDomain.DecodeRights(output.Rights),
		User:      userDto.ToProfileResponse(output.Profile),
	}
}

// ApplicationResponse represents an application to its owner, key included.
type ApplicationResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	URL       string          `json:"url,omitempty"`
	Key       string          `json:"key"` //nolint:gosec // shown to the owner only
	Rights    map[string]bool `json:"rights"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MapApplicationToResponse converts a domain application to an API response.
func MapApplicationToResponse(app *authDomain.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:        app.ID.String(),
		Name:      app.Name,
		URL:       app.URL,
		Key:       app.Key,
		Rights:    authDomain.DecodeRights(app.DefaultRights),
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
}

// ListApplicationsResponse represents a list of applications in API responses.
type ListApplicationsResponse struct {
	Data []ApplicationResponse `json:"data"`
}

// MapApplicationsToListResponse converts a slice of domain applications to a list API response.
func MapApplicationsToListResponse(apps []*authDomain.Application) ListApplicationsResponse {
	data := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		data = append(data, MapApplicationToResponse(app))
	}
	return ListApplicationsResponse{Data: data}
}

// ListSubscriptionsResponse lists the applications holding a session of the user.
type ListSubscriptionsResponse struct {
	Data []ApplicationSummary `json:"data"`
}

// MapSubscriptionsToListResponse converts subscribed applications, keys stripped.
func MapSubscriptionsToListResponse(apps []*authDomain.Application) ListSubscriptionsResponse {
	data := make([]ApplicationSummary, 0, len(apps))
	for _, app := range apps {
		data = append(data, ApplicationSummary{ID: app.ID.String(), Name: app.Name, URL: app.URL})
	}
	return ListSubscriptionsResponse{Data: data}
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	JTI           string          `json:"jti"`
	ApplicationID *string         `json:"application_id,omitempty"`
	Rights        map[string]bool `json:"rights,omitempty"`
	OpenIP        string          `json:"open_ip"`
	LastIP        string          `json:"last_ip"`
	LastLoginAt   time.Time       `json:"last_login_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
	Current       bool            `json:"current"`
}

// MapSessionViewToResponse converts a session view to an API response.
func MapSessionViewToResponse(view *authDomain.SessionView) SessionResponse {
	session := view.Session
	response := SessionResponse{
		JTI:         session.JTI,
		OpenIP:      session.OpenIP,
		LastIP:      session.LastIP,
		LastLoginAt: session.LastLoginAt,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		Current:     view.Current,
	}
	if session.ApplicationID != nil {
		id := session.ApplicationID.String()
		response.ApplicationID = &id
	}
	if session.Rights != nil {
		response.Rights = authDomain.DecodeRights(*session.Rights)
	}
	return response
}

// ListSessionsResponse represents a list of sessions in API responses.
type ListSessionsResponse struct {
	Data []SessionResponse `json:"data"`
}

// MapSessionViewsToListResponse converts session views to a list API response.
func MapSessionViewsToListResponse(views []*authDomain.SessionView) ListSessionsResponse {
	data := make([]SessionResponse, 0, len(views))
	for _, view := range views {
		data = append(data, MapSessionViewToResponse(view))
	}
	return ListSessionsResponse{Data: data}
}
