package coinapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/pumprand/pump-client/internal/adapter"
	"github.com/pumprand/pump-client/internal/domain"
)

// CoinResponse is the envelope of the single coin endpoints
type CoinResponse struct {
	Coin domain.Coin `json:"coin"`
}

// CreateCoinRequest is the body of POST /coins/create
type CreateCoinRequest struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Symbol          string           `json:"symbol"`
	Supply          domain.BigString `json:"supply"`
	Decimals        uint8            `json:"decimals"`
	ContractAddress string           `json:"contractAddress"`
	Creator         string           `json:"creator"`
	Graduated       bool             `json:"graduated"`
	Verified        bool             `json:"verified"`
	Description     *string          `json:"description"`
	ImageURL        *string          `json:"imageUrl"`
	Twitter         *string          `json:"twitter"`
	Website         *string          `json:"website"`
	Telegram        *string          `json:"telegram"`
}

// Client defines the interface for the backend query API to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/coinapi_client.go -package=mocks -mock_names=Client=MockCoinAPIClient
type Client interface {
	// FetchCoins returns up to limit coins with id <= maxID in descending id order.
	// A nil maxID starts from the newest coin.
	FetchCoins(ctx context.Context, limit int, maxID *int64) ([]domain.Coin, error)

	// FetchCoinByID returns a single coin or domain.ErrCoinNotFound
	FetchCoinByID(ctx context.Context, id int64) (*domain.Coin, error)

	// FetchCoinByAddress returns the coin deployed at a token address or domain.ErrCoinNotFound
	FetchCoinByAddress(ctx context.Context, address string) (*domain.Coin, error)

	// CreateCoin registers an on-chain coin with the backend
	CreateCoin(ctx context.Context, req CreateCoinRequest) error

	// UploadImage uploads a coin image and returns its public URL
	UploadImage(ctx context.Context, id int64, filename string, data []byte) (string, error)

	// VerifyCoin asks the backend to verify a coin against the chain
	VerifyCoin(ctx context.Context, id int64) error
}

// PumpAPIClient implements Client over HTTP
type PumpAPIClient struct {
	httpClient adapter.HTTPClient
	mime       adapter.MimeDetector
	apiBaseURL string
}

// NewClient creates a new query API client
func NewClient(httpClient adapter.HTTPClient, mime adapter.MimeDetector, apiBaseURL string) Client {
	return &PumpAPIClient{
		httpClient: httpClient,
		mime:       mime,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
	}
}

// FetchCoins calls GET /coins
func (c *PumpAPIClient) FetchCoins(ctx context.Context, limit int, maxID *int64) ([]domain.Coin, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if maxID != nil {
		params.Set("maxId", strconv.FormatInt(*maxID, 10))
	}

	endpoint := c.apiBaseURL + "/coins"
	if q := params.Encode(); q != "" {
		endpoint += "?" + q
	}

	var coins []domain.Coin
	if err := c.httpClient.Get(ctx, endpoint, &coins); err != nil {
		return nil, fmt.Errorf("failed to fetch coins: %w", err)
	}

	return coins, nil
}

// FetchCoinByID calls GET /coin/:id
func (c *PumpAPIClient) FetchCoinByID(ctx context.Context, id int64) (*domain.Coin, error) {
	return c.fetchCoin(ctx, fmt.Sprintf("%s/coin/%d", c.apiBaseURL, id))
}

// FetchCoinByAddress calls GET /address/:address
func (c *PumpAPIClient) FetchCoinByAddress(ctx context.Context, address string) (*domain.Coin, error) {
	return c.fetchCoin(ctx, fmt.Sprintf("%s/address/%s", c.apiBaseURL, url.PathEscape(address)))
}

func (c *PumpAPIClient) fetchCoin(ctx context.Context, endpoint string) (*domain.Coin, error) {
	var response CoinResponse
	if err := c.httpClient.Get(ctx, endpoint, &response); err != nil {
		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, domain.ErrCoinNotFound
		}
		return nil, fmt.Errorf("failed to fetch coin: %w", err)
	}

	return &response.Coin, nil
}

// CreateCoin calls POST /coins/create
func (c *PumpAPIClient) CreateCoin(ctx context.Context, req CreateCoinRequest) error {
	if err := c.httpClient.PostJSON(ctx, c.apiBaseURL+"/coins/create", req, nil); err != nil {
		return fmt.Errorf("failed to create coin: %w", err)
	}
	return nil
}

// UploadImage calls POST /coin/:id/upload with a multipart "file" field.
// The response body is the plain-text public URL.
func (c *PumpAPIClient) UploadImage(ctx context.Context, id int64, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("failed to upload image: empty file")
	}

	contentType, ext := c.mime.Detect(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("failed to upload image: unsupported content type %s", contentType)
	}
	if filename == "" {
		filename = "image" + ext
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}

	resp, err := c.httpClient.Post(ctx, fmt.Sprintf("%s/coin/%d/upload", c.apiBaseURL, id), writer.FormDataContentType(), body.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return strings.TrimSpace(string(resp)), nil
}

// VerifyCoin calls POST /coin/:id/verify
func (c *PumpAPIClient) VerifyCoin(ctx context.Context, id int64) error {
	if _, err := c.httpClient.Post(ctx, fmt.Sprintf("%s/coin/%d/verify", c.apiBaseURL, id), "", nil); err != nil {
		return fmt.Errorf("failed to verify coin: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
