package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yashrajoria/shoptube-backend/models"
)

// DefaultChapaBaseURL is the production Chapa API root.
const DefaultChapaBaseURL = "https://api.chapa.co/v1"

// ChapaGateway implements PaymentGateway using the Chapa API.
type ChapaGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewChapaGateway creates a new ChapaGateway. An empty baseURL selects the
// production API.
func NewChapaGateway(secretKey, baseURL string) *ChapaGateway {
	if baseURL == "" {
		baseURL = DefaultChapaBaseURL
	}
	return &ChapaGateway{
		secretKey: secretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *ChapaGateway) Name() string { return models.GatewayChapa }

// ---- Chapa API request/response structs ----

type chapaCustomization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type chapaInitializeRequest struct {
	Amount        string             `json:"amount"`
	Currency      string             `json:"currency"`
	Email         string             `json:"email,omitempty"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	PhoneNumber   string             `json:"phone_number"`
	TxRef         string             `json:"tx_ref"`
	CallbackURL   string             `json:"callback_url"`
	ReturnURL     string             `json:"return_url"`
	Customization chapaCustomization `json:"customization"`
	Meta          map[string]string  `json:"meta,omitempty"`
}

type chapaInitializeResponse struct {
	Message json.RawMessage `json:"message"`
	Status  string          `json:"status"`
	Data    *struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type chapaVerifyResponse struct {
	Message json.RawMessage `json:"message"`
	Status  string          `json:"status"`
	Data    *struct {
		Status    string     `json:"status"`
		Amount    flexAmount `json:"amount"`
		Currency  string     `json:"currency"`
		TxRef     string     `json:"tx_ref"`
		Reference string     `json:"reference"`
	} `json:"data"`
}

// flexAmount accepts amounts encoded either as JSON numbers or strings.
type flexAmount struct {
	Value float64
	Set   bool
}

func (f *flexAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f.Value, f.Set = v, true
	return nil
}

// ---- PaymentGateway implementation ----

// Initialize creates a Chapa transaction and returns its hosted checkout URL.
func (c *ChapaGateway) Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error) {
	phone := req.PhoneNumber
	if phone == "" {
		phone = "0910000000"
	}
	lastName := req.LastName
	if lastName == "" {
		lastName = "-"
	}

	body := chapaInitializeRequest{
		Amount:      strconv.FormatFloat(req.Amount, 'f', 2, 64),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    lastName,
		PhoneNumber: phone,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		Customization: chapaCustomization{
			Title:       "ShopTube Payment",
			Description: "Pay for your order",
		},
		Meta: map[string]string{
			"order_id": req.OrderID,
			"user_id":  req.CustomerID,
		},
	}

	var resp chapaInitializeResponse
	status, _, err := c.doRequest(ctx, http.MethodPost, "/transaction/initialize", body, &resp)
	if err != nil {
		return nil, fmt.Errorf("chapa Initialize: %w", err)
	}

	if resp.Status != "success" || resp.Data == nil || resp.Data.CheckoutURL == "" {
		msg := messageText(resp.Message)
		if msg == "" {
			msg = fmt.Sprintf("initialize failed with HTTP %d", status)
		}
		return nil, &RejectedError{Message: msg}
	}

	return &Checkout{CheckoutURL: resp.Data.CheckoutURL}, nil
}

// Verify looks up the transaction by tx_ref. Success requires both the
// envelope and the transaction status to be "success".
func (c *ChapaGateway) Verify(ctx context.Context, txRef, _ string) (*Verification, error) {
	var resp chapaVerifyResponse
	path := "/transaction/verify/" + url.PathEscape(txRef)
	status, rawBody, err := c.doRequest(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("chapa Verify: %w", err)
	}
	if resp.Status == "" {
		return nil, fmt.Errorf("chapa Verify: malformed response (HTTP %d)", status)
	}

	v := &Verification{Status: resp.Status, Raw: string(rawBody)}
	if resp.Data != nil {
		v.Status = resp.Data.Status
		v.Amount = resp.Data.Amount.Value
		v.HasAmount = resp.Data.Amount.Set
		v.Currency = resp.Data.Currency
		v.ProviderRef = resp.Data.Reference
		v.Success = resp.Status == "success" && resp.Data.Status == "success"
	}
	return v, nil
}

// ---- HTTP helper ----

// doRequest decodes any JSON body, including 4xx ones, since Chapa reports
// declines with an error status. 5xx and undecodable bodies are errors.
func (c *ChapaGateway) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return resp.StatusCode, respBytes, fmt.Errorf("chapa API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return resp.StatusCode, respBytes, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, respBytes, nil
}

// messageText flattens Chapa's message field, which is either a string or an
// object of field errors.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var fields map[string][]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, fields[k]...)
		}
		return strings.Join(parts, "; ")
	}
	return string(raw)
}
