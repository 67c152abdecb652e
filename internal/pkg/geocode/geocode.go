// Package geocode resolves street addresses to coordinates with a Gemini model
// constrained to a JSON response schema.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"

	"github.com/timeguard/timeguard-api/internal/pkg/geo"
)

var (
	ErrAddressNotFound = errors.New("address could not be located")
	ErrInvalidResponse = errors.New("geocoder returned an invalid response")
)

const (
	cachePrefix = "geocode:"
	cacheTTL    = 30 * 24 * time.Hour
)

// ContentGenerator is satisfied by (*genai.Client).Models.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Geocoder struct {
	models  ContentGenerator
	model   string
	timeout time.Duration
	rdb     *redis.Client
	sf      singleflight.Group
}

// New creates a geocoder backed by the Gemini API. rdb may be nil.
func New(ctx context.Context, apiKey, model string, timeout time.Duration, rdb *redis.Client) (*Geocoder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return NewWithGenerator(client.Models, model, timeout, rdb), nil
}

func NewWithGenerator(models ContentGenerator, model string, timeout time.Duration, rdb *redis.Client) *Geocoder {
	return &Geocoder{models: models, model: model, timeout: timeout, rdb: rdb}
}

type result struct {
	Found     bool    `json:"found"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"found":     {Type: genai.TypeBoolean, Description: "false when the address cannot be located"},
		"latitude":  {Type: genai.TypeNumber, Description: "WGS84 latitude in decimal degrees"},
		"longitude": {Type: genai.TypeNumber, Description: "WGS84 longitude in decimal degrees"},
	},
	Required: []string{"found", "latitude", "longitude"},
}

func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// Geocode returns the coordinates of address. Concurrent lookups of the same
// address share one model call.
func (g *Geocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	key := cachePrefix + normalize(address)

	if g.rdb != nil {
		if cached, err := g.rdb.Get(ctx, key).Result(); err == nil {
			var r result
			if err := json.Unmarshal([]byte(cached), &r); err == nil && r.Found {
				return r.Latitude, r.Longitude, nil
			}
		}
	}

	v, err, _ := g.sf.Do(key, func() (interface{}, error) {
		r, err := g.lookup(ctx, address)
		if err != nil {
			return nil, err
		}
		if g.rdb != nil {
			if data, err := json.Marshal(r); err == nil {
				if err := g.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
					slog.Warn("geocode cache write failed", "error", err)
				}
			}
		}
		return r, nil
	})
	if err != nil {
		return 0, 0, err
	}

	r := v.(result)
	return r.Latitude, r.Longitude, nil
}

func (g *Geocoder) lookup(ctx context.Context, address string) (result, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := "Return the geographic coordinates of this street address. " +
		"If it cannot be located with confidence, set found to false.\n\nAddress: " + address

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return result{}, fmt.Errorf("generate content: %w", err)
	}

	var r result
	if err := json.Unmarshal([]byte(resp.Text()), &r); err != nil {
		return result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !r.Found {
		return result{}, ErrAddressNotFound
	}
	if !geo.ValidCoordinates(r.Latitude, r.Longitude) {
		return result{}, ErrInvalidResponse
	}
	return r, nil
}
