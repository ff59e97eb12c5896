package stackcoin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// acceptedWindow is how far back the accepted-request listing reaches.
// It deliberately overlaps the 1h entry expiry window so a request accepted
// just before its entry expires is still observed.
const acceptedWindow = "2h"

// callTimeout bounds every outbound call so a hung request cannot stall
// the reconciliation tick that issued it.
const callTimeout = 15 * time.Second

// User is a StackCoin account resolved from a Discord ID.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// Balance is the authenticated bot account's own identity and balance.
type Balance struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// Request is a payment request as reported by the StackCoin API. IDs are
// treated as opaque strings throughout.
type Request struct {
	ID          json.Number `json:"id"`
	Amount      int64       `json:"amount"`
	Status      string      `json:"status"`
	RequestedAt time.Time   `json:"requested_at"`
}

// RequestID returns the request id in its canonical string form.
func (r *Request) RequestID() string {
	return r.ID.String()
}

type usersResponse struct {
	Users []*User `json:"users"`
}

type createRequestResponse struct {
	RequestID json.Number `json:"request_id"`
}

type requestsResponse struct {
	Requests   []*Request `json:"requests"`
	Pagination *struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

type sendResponse struct {
	Success bool `json:"success"`
}

type guildResponse struct {
	DesignatedChannelSnowflake string `json:"designated_channel_snowflake"`
}

// Client is an authenticated StackCoin API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a new StackCoin client for the given base URL and bot
// token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: callTimeout},
	}
}

// GetUserByDiscordID resolves a StackCoin account from a Discord ID.
// Returns nil without error if no account is registered for that ID.
func (c *Client) GetUserByDiscordID(ctx context.Context, discordID string) (*User, error) {
	var resp usersResponse
	query := url.Values{"discord_id": {discordID}}
	if err := c.get(ctx, "/users", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to look up user by discord ID %s: %w", discordID, err)
	}

	if len(resp.Users) == 0 {
		return nil, nil
	}
	return resp.Users[0], nil
}

// SelfBalance returns the bot account's own username and balance.
func (c *Client) SelfBalance(ctx context.Context) (*Balance, error) {
	var resp Balance
	if err := c.get(ctx, "/balance", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get self balance: %w", err)
	}
	return &resp, nil
}

// CreateRequest creates a payment request against the given StackCoin user
// and returns the correlating request id.
func (c *Client) CreateRequest(ctx context.Context, userID int64, amount int64, label string) (string, error) {
	body := map[string]any{"amount": amount, "label": label}

	var resp createRequestResponse
	path := fmt.Sprintf("/users/%d/requests", userID)
	if err := c.post(ctx, path, body, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to create payment request for user %d: %w", userID, err)
	}

	requestID := resp.RequestID.String()
	if requestID == "" {
		return "", fmt.Errorf("payment request for user %d returned no request id", userID)
	}
	return requestID, nil
}

// GetAcceptedRequests returns all payment requests accepted within the
// trailing window where the bot is the responder, following pagination
// until the last page.
func (c *Client) GetAcceptedRequests(ctx context.Context) ([]*Request, error) {
	var all []*Request

	for page := 1; ; page++ {
		query := url.Values{
			"role":   {"responder"},
			"status": {"accepted"},
			"since":  {acceptedWindow},
			"page":   {strconv.Itoa(page)},
		}

		var resp requestsResponse
		if err := c.get(ctx, "/requests", query, &resp); err != nil {
			return nil, fmt.Errorf("failed to list accepted requests (page %d): %w", page, err)
		}

		if len(resp.Requests) == 0 {
			break
		}
		all = append(all, resp.Requests...)

		if resp.Pagination == nil || page >= resp.Pagination.TotalPages {
			break
		}
	}

	return all, nil
}

// DenyRequest denies a pending payment request by id.
func (c *Client) DenyRequest(ctx context.Context, requestID string) error {
	path := fmt.Sprintf("/requests/%s/deny", url.PathEscape(requestID))
	if err := c.post(ctx, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to deny request %s: %w", requestID, err)
	}
	return nil
}

// SendFunds transfers amount to the given StackCoin user. Each attempt
// carries a fresh idempotency key so a retried send is distinguishable on
// the remote side.
func (c *Client) SendFunds(ctx context.Context, userID int64, amount int64, label string) error {
	body := map[string]any{"amount": amount, "label": label}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	var resp sendResponse
	path := fmt.Sprintf("/users/%d/send", userID)
	if err := c.post(ctx, path, body, headers, &resp); err != nil {
		return fmt.Errorf("failed to send %d STK to user %d: %w", amount, userID, err)
	}
	if !resp.Success {
		return fmt.Errorf("send of %d STK to user %d was not successful", amount, userID)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"amount": amount,
		"label":  label,
	}).Info("Sent STK")
	return nil
}

// GetGuildChannel returns the designated announcement channel for a guild,
// or empty string if none is configured.
func (c *Client) GetGuildChannel(ctx context.Context, guildID string) (string, error) {
	var resp guildResponse
	path := fmt.Sprintf("/discord/guilds/%s", url.PathEscape(guildID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to get guild channel for %s: %w", guildID, err)
	}
	return resp.DesignatedChannelSnowflake, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
