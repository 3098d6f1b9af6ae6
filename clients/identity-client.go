package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nexus-project/collaboration-service/models"

	"github.com/sony/gobreaker"
)

// IdentityProvider is the boundary to the external users-service: it mints
// identities for freshly added members and resolves existing profiles.
type IdentityProvider interface {
	MintMember(ctx context.Context, name string) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// IdentityClient talks to the users-service over HTTP behind a circuit
// breaker, mirroring how the other services reach each other.
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewIdentityClient(baseURL string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *IdentityClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &IdentityClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// MintMember provisions a lightweight member identity for a user added to a
// team by name. The users-service owns the generated ID and avatar.
func (c *IdentityClient) MintMember(ctx context.Context, name string) (*models.UserProfile, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode provision request: %v", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users/provision", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("users-service returned status %d", resp.StatusCode)
		}

		var profile models.UserProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, fmt.Errorf("failed to decode provisioned profile: %v", err)
		}
		return &profile, nil
	})
	if err != nil {
		return nil, fmt.Errorf("identity provider unavailable: %w", models.ErrTransientStore)
	}

	return result.(*models.UserProfile), nil
}

// GetProfile fetches the display profile for an existing user.
func (c *IdentityClient) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users/"+userID, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, &models.NotFoundError{Resource: "user", ID: userID}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("users-service returned status %d", resp.StatusCode)
		}

		var profile models.UserProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %v", err)
		}
		return &profile, nil
	})
	if err != nil {
		if models.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("identity provider unavailable: %w", models.ErrTransientStore)
	}

	return result.(*models.UserProfile), nil
}
