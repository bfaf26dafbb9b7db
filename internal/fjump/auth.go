package fjump

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	TokenName string `json:"token_name"` //nolint:tagliatelle // FileJump API key
}

type loginResponse struct {
	User struct {
		AccessToken string `json:"access_token"` //nolint:tagliatelle // FileJump API key
	} `json:"user"`
}

// Login authenticates with email and password and returns the access token.
// The token is also installed on the client for subsequent requests.
// tokenName labels the token in the user's FileJump account.
func (c *Client) Login(ctx context.Context, email, password, tokenName string) (string, error) {
	c.logger.Info("logging in",
		slog.String("email", email),
		slog.String("token_name", tokenName),
	)

	bodyBytes, err := json.Marshal(loginRequest{
		Email:     email,
		Password:  password,
		TokenName: tokenName,
	})
	if err != nil {
		return "", fmt.Errorf("fjump: marshaling login request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "auth/login", bytes.NewReader(bodyBytes), http.StatusOK)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("fjump: decoding login response: %w", err)
	}

	if lr.User.AccessToken == "" {
		return "", fmt.Errorf("fjump: login response carried no access token: %w", ErrUnauthorized)
	}

	c.token = lr.User.AccessToken

	c.logger.Info("login successful")

	return c.token, nil
}
