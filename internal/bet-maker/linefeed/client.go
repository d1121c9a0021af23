// Package linefeed busca no line-provider o snapshot de eventos abertos.
package linefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/radieske/sports-bet-sync/internal/shared/apperr"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

const activePath = "/actual_events/"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New cria o cliente; timeout é o limite de cada pull
func New(base string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ActiveEvents devolve o snapshot completo de eventos abertos.
// Falha de rede, status não-2xx ou corpo inválido resultam em erro;
// nunca em snapshot parcial.
func (c *Client) ActiveEvents(ctx context.Context) ([]events.ActiveEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+activePath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pull active events: %w: %w", apperr.ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("pull active events: http %d: %w", res.StatusCode, apperr.ErrTransport)
	}

	var out []events.ActiveEvent
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode active events: %w: %w", apperr.ErrParse, err)
	}
	// corpo "null" decodifica sem erro, mas não é um snapshot
	if out == nil {
		return nil, fmt.Errorf("decode active events: null body: %w", apperr.ErrParse)
	}
	return out, nil
}
