// Package tripactions é o cliente REST da API de booking do TripActions.
// A autenticação é OAuth2 client_credentials e a paginação é por índice de
// página com totalPages na resposta.
package tripactions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

// DefaultBaseURL é o endpoint público v1.
const DefaultBaseURL = "https://api.tripactions.com/v1"

const pageSize = 100

// Client acessa a conta associada ao token.
type Client struct {
	core *httpapi.Client
}

// NewClient cria o cliente com a fonte de tokens.
func NewClient(source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, source, opts...)
}

// NewClientWithBaseURL aponta para outro endpoint (testes).
func NewClientWithBaseURL(baseURL string, source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return &Client{core: httpapi.New(baseURL, httpapi.BearerSource{Source: source}, opts...)}
}

// Booking é uma reserva de viagem.
type Booking struct {
	UUID          string  `json:"uuid"`
	BookingType   string  `json:"bookingType"` // FLIGHT, HOTEL, CAR, RAIL
	Status        string  `json:"bookingStatus"`
	GrandTotal    float64 `json:"grandTotal"`
	Currency      string  `json:"currency"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	TravelerName  string  `json:"travelerName"`
	TravelerEmail string  `json:"travelerEmail"`
}

type bookingPage struct {
	Data []Booking `json:"data"`
	Page struct {
		TotalPages  int `json:"totalPages"`
		CurrentPage int `json:"currentPage"`
	} `json:"page"`
}

// ListBookings percorre as reservas criadas no intervalo informado.
func (c *Client) ListBookings(ctx context.Context, createdFrom, createdTo time.Time) ([]Booking, error) {
	var all []Booking

	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("size", fmt.Sprint(pageSize))
		if !createdFrom.IsZero() {
			q.Set("createdFrom", fmt.Sprint(createdFrom.Unix()))
		}
		if !createdTo.IsZero() {
			q.Set("createdTo", fmt.Sprint(createdTo.Unix()))
		}

		var resp bookingPage
		if err := c.core.Do(ctx, http.MethodGet, "/bookings", q, nil, &resp); err != nil {
			return nil, fmt.Errorf("listar reservas (página %d): %w", page, err)
		}
		all = append(all, resp.Data...)

		if page+1 >= resp.Page.TotalPages || len(resp.Data) == 0 {
			return all, nil
		}
	}
}
