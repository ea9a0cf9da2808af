package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

type Client struct {
	mu          sync.RWMutex
	serverToken string
	fromEmail   string
	baseURL     string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverToken != ""
}

// UpdateConfig replaces the Postmark credentials at runtime.
func (c *Client) UpdateConfig(serverToken, fromEmail, baseURL string) {
	c.mu.Lock()
	c.serverToken = serverToken
	c.fromEmail = fromEmail
	c.baseURL = baseURL
	c.mu.Unlock()
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendLoginCode emails a one-time sign-in code. The code expires in 15
// minutes and is single-use.
func (c *Client) SendLoginCode(toEmail, code string) error {
	textBody := fmt.Sprintf("Your Alignr sign-in code is:\n\n%s\n\nIt expires in 15 minutes. If you didn't request this, you can ignore this email.", code)
	htmlBody := fmt.Sprintf(
		`<p>Your Alignr sign-in code is:</p><p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p><p>It expires in 15 minutes. If you didn't request this, you can ignore this email.</p>`,
		code,
	)
	return c.send(postmarkEmail{
		To:       toEmail,
		Subject:  "Your Alignr sign-in code",
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
}

// SendInvite emails a co-organizer invitation link for an event.
func (c *Client) SendInvite(toEmail, eventTitle, token string) error {
	c.mu.RLock()
	link := fmt.Sprintf("%s/invite?token=%s", c.baseURL, token)
	c.mu.RUnlock()

	textBody := fmt.Sprintf("You've been invited to help plan %s.\n\nAccept the invitation:\n\n%s", eventTitle, link)
	htmlBody := fmt.Sprintf(
		`<p>You've been invited to help plan <strong>%s</strong>.</p><p><a href="%s">Accept the invitation</a></p>`,
		eventTitle, link,
	)
	return c.send(postmarkEmail{
		To:       toEmail,
		Subject:  fmt.Sprintf("You've been invited to plan %s on Alignr", eventTitle),
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
}

// SendFinalizedSummary tells the organizer their event has been locked in.
func (c *Client) SendFinalizedSummary(toEmail, eventTitle, shareCode string) error {
	c.mu.RLock()
	link := fmt.Sprintf("%s/e/%s", c.baseURL, shareCode)
	c.mu.RUnlock()

	textBody := fmt.Sprintf("%s is finalized. No further changes can be made by guests.\n\nView the event:\n\n%s", eventTitle, link)
	htmlBody := fmt.Sprintf(
		`<p><strong>%s</strong> is finalized. No further changes can be made by guests.</p><p><a href="%s">View the event</a></p>`,
		eventTitle, link,
	)
	return c.send(postmarkEmail{
		To:       toEmail,
		Subject:  fmt.Sprintf("%s is finalized", eventTitle),
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
}

func (c *Client) send(msg postmarkEmail) error {
	c.mu.RLock()
	token := c.serverToken
	msg.From = c.fromEmail
	httpClient := c.httpClient
	c.mu.RUnlock()

	if token == "" {
		return fmt.Errorf("email client not configured: missing server token")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.postmarkapp.com/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
