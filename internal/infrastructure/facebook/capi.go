package facebook

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
)

const graphBaseURL = "https://graph.facebook.com"

var nonDigits = regexp.MustCompile(`\D`)

// HashSHA256 returns a hex-encoded SHA256 hash of the normalized input string.
func HashSHA256(input string) string {
	if input == "" {
		return ""
	}
	normalized := strings.ToLower(strings.TrimSpace(input))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// NormalizePhone turns a domestic mobile number into E.164 digits without '+', as Meta expects.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "0") {
		return "82" + digits[1:]
	}
	return digits
}

// CAPIClient handles server-side event tracking to Facebook Conversions API
type CAPIClient struct {
	pixelID     string
	accessToken string
	apiVersion  string
	baseURL     string
	httpClient  *http.Client
	retryDelay  time.Duration
}

// NewCAPIClient returns nil when the pixel is not configured; a nil client ignores every call.
func NewCAPIClient(pixelID, accessToken, apiVersion string) *CAPIClient {
	if pixelID == "" || accessToken == "" {
		logger.Warn().Msg("Facebook Pixel ID or Access Token not configured. CAPI disabled.")
		return nil
	}
	return &CAPIClient{
		pixelID:     pixelID,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		baseURL:     graphBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retryDelay: time.Second,
	}
}

// UserData represents the user information for event matching
type UserData struct {
	Email      string `json:"em,omitempty"` // SHA256 hashed email
	Phone      string `json:"ph,omitempty"` // SHA256 hashed phone
	FirstName  string `json:"fn,omitempty"` // SHA256 hashed first name
	Country    string `json:"country,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	ClientIP   string `json:"client_ip_address,omitempty"`
	UserAgent  string `json:"client_user_agent,omitempty"`
}

type CustomData struct {
	ContentName     string `json:"content_name,omitempty"`
	ContentCategory string `json:"content_category,omitempty"`
	NumItems        int    `json:"num_items,omitempty"`
	LeadID          string `json:"lead_id,omitempty"`
}

// Event represents a single CAPI event
type Event struct {
	EventName      string     `json:"event_name"`
	EventTime      int64      `json:"event_time"`
	ActionSource   string     `json:"action_source"`
	EventSourceURL string     `json:"event_source_url,omitempty"`
	UserData       UserData   `json:"user_data"`
	CustomData     CustomData `json:"custom_data,omitempty"`
	EventID        string     `json:"event_id,omitempty"` // For deduplication with browser events
}

type EventPayload struct {
	Data []Event `json:"data"`
}

// SendEvent posts one event, retrying transport errors, 429 and 5xx up to three times.
func (c *CAPIClient) SendEvent(ctx context.Context, event Event) error {
	if c == nil {
		return nil
	}

	jsonData, err := json.Marshal(EventPayload{Data: []Event{event}})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/events?access_token=%s", c.baseURL, c.apiVersion, c.pixelID, c.accessToken)

	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * c.retryDelay):
			}
		}

		retry, err := c.post(ctx, url, jsonData)
		if err == nil {
			logger.WithContext(ctx).Debug().Str("event", event.EventName).Msg("CAPI event sent")
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

func (c *CAPIClient) post(ctx context.Context, url string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("CAPI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return false, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return retry, fmt.Errorf("CAPI error (status %d): %s", resp.StatusCode, string(msg))
}

// LeadEvent builds the Lead event for a submitted quote request with PII hashed.
func LeadEvent(lead *domain.Lead, now time.Time) Event {
	userData := UserData{
		Phone:      HashSHA256(NormalizePhone(lead.ContactPhone)),
		FirstName:  HashSHA256(lead.ContactName),
		Country:    HashSHA256("kr"),
		ExternalID: HashSHA256(lead.SessionID),
	}
	if lead.ContactEmail != nil {
		userData.Email = HashSHA256(*lead.ContactEmail)
	}

	return Event{
		EventName:    "Lead",
		EventTime:    now.Unix(),
		ActionSource: "website",
		UserData:     userData,
		CustomData: CustomData{
			ContentName:     lead.ProductType,
			ContentCategory: "team_uniform",
			NumItems:        lead.Quantity,
			LeadID:          lead.ID,
		},
		EventID: "lead-" + lead.ID, // matches the browser pixel eventID
	}
}

// TrackLead sends the Lead event in the background so the wizard response is not delayed.
func (c *CAPIClient) TrackLead(ctx context.Context, lead *domain.Lead) {
	if c == nil {
		return
	}

	event := LeadEvent(lead, time.Now())
	// Detach from the request; it is cancelled as soon as the response is written.
	bg := logger.NewContext(context.Background(), logger.WithContext(ctx))
	go func() {
		if err := c.SendEvent(bg, event); err != nil {
			logger.WithContext(bg).Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to send CAPI Lead event")
		}
	}()
}
