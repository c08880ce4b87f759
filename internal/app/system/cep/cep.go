// Package cep looks up Brazilian postal codes (CEP) on ViaCEP.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/domain/models"
)

// DefaultBaseURL is the public ViaCEP endpoint.
const DefaultBaseURL = "https://viacep.com.br/ws"

var (
	// ErrInvalidCode is returned when the code does not have 8 digits.
	ErrInvalidCode = errors.New("postal code must have 8 digits")
	// ErrNotFound is returned when the service does not know the code.
	ErrNotFound = errors.New("postal code not found")
)

// Address is the subset of a lookup result used to pre-fill a registration.
type Address struct {
	ZipCode      string `json:"zipCode"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	StateCode    string `json:"stateCode"`
}

// Client queries ViaCEP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client with the given base URL (DefaultBaseURL when
// empty) and request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// ViaCEP answers {"erro": true} (older versions: "true") for unknown codes.
	Erro any `json:"erro"`
}

func (v viaCEPResponse) notFound() bool {
	switch e := v.Erro.(type) {
	case bool:
		return e
	case string:
		return e == "true"
	}
	return false
}

// Lookup resolves code. Non-digit characters are ignored.
func (c *Client) Lookup(ctx context.Context, code string) (Address, error) {
	digits := normalize.Digits(code)
	if len(digits) != 8 {
		return Address{}, ErrInvalidCode
	}

	url := fmt.Sprintf("%s/%s/json/", c.BaseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Address{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("cep lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return Address{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("cep lookup: unexpected status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return Address{}, fmt.Errorf("cep lookup: decode: %w", err)
	}
	if body.notFound() {
		return Address{}, ErrNotFound
	}

	return Address{
		ZipCode:      digits,
		Street:       strings.TrimSpace(body.Logradouro),
		Neighborhood: strings.TrimSpace(body.Bairro),
		City:         strings.TrimSpace(body.Localidade),
		StateCode:    normalize.StateCode(body.UF),
	}, nil
}

// Apply copies the non-empty parts of addr onto r and returns the result.
// Fields the lookup left blank keep what the user already typed.
func Apply(r models.Registration, addr Address) models.Registration {
	if addr.ZipCode != "" {
		r.ZipCode = addr.ZipCode
	}
	if addr.Street != "" {
		r.Address = addr.Street
	}
	if addr.Neighborhood != "" {
		r.Bairro = addr.Neighborhood
	}
	if addr.City != "" {
		r.City = addr.City
	}
	if addr.StateCode != "" {
		r.State = addr.StateCode
	}
	return r
}
