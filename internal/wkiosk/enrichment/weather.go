package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

const (
	// DefaultWeatherURL is the wttr.in API root
	DefaultWeatherURL = "https://wttr.in"

	// PlaceholderTemperature is shown when no reading is available
	PlaceholderTemperature = "--°C"
	// DefaultWeatherIcon is shown for unknown condition codes and failures
	DefaultWeatherIcon = "☀️"
)

// Weather is a current-conditions reading for one city
type Weather struct {
	City string
	// TempC is the temperature in Celsius as reported, or empty when unknown
	TempC string
	// Code is the provider's condition code
	Code      string
	Icon      string
	FetchedAt time.Time
}

// Temperature formats the reading for display
func (w Weather) Temperature() string {
	if w.TempC == "" {
		return PlaceholderTemperature
	}
	return w.TempC + "°C"
}

// Available reports whether the reading came from the provider
func (w Weather) Available() bool {
	return w.TempC != ""
}

// Placeholder is the reading shown when weather cannot be fetched
func Placeholder(city string) Weather {
	return Weather{City: city, Icon: DefaultWeatherIcon}
}

var weatherIcons = map[string]string{
	"113": "☀️",
	"116": "⛅",
	"119": "☁️", "122": "☁️",
	"143": "🌫️", "248": "🌫️", "260": "🌫️",
	"176": "🌦️", "263": "🌦️", "293": "🌦️", "353": "🌦️",
	"179": "🌨️", "182": "🌨️", "185": "🌨️", "227": "🌨️", "317": "🌨️", "320": "🌨️",
	"323": "🌨️", "350": "🌨️", "362": "🌨️", "365": "🌨️", "368": "🌨️", "374": "🌨️", "377": "🌨️",
	"200": "⛈️", "386": "⛈️", "389": "⛈️", "392": "⛈️", "395": "⛈️",
	"230": "❄️", "326": "❄️", "329": "❄️", "332": "❄️", "335": "❄️", "338": "❄️", "371": "❄️",
	"266": "🌧️", "281": "🌧️", "284": "🌧️", "296": "🌧️", "299": "🌧️", "302": "🌧️",
	"305": "🌧️", "308": "🌧️", "311": "🌧️", "314": "🌧️", "356": "🌧️", "359": "🌧️",
}

// IconFor maps a wttr.in weather code to its display icon
func IconFor(code string) string {
	if icon, ok := weatherIcons[strings.TrimSpace(code)]; ok {
		return icon
	}
	return DefaultWeatherIcon
}

// WeatherSource looks up current conditions
type WeatherSource interface {
	Current(ctx context.Context, city string) (Weather, error)
}

// WeatherClient reads current conditions from wttr.in
type WeatherClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	clock      func() time.Time
}

// WeatherOption configures a WeatherClient
type WeatherOption func(*WeatherClient)

// WithWeatherURL points the client at another wttr.in compatible server
func WithWeatherURL(baseURL string) WeatherOption {
	return func(c *WeatherClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithWeatherHTTPClient replaces the HTTP client
func WithWeatherHTTPClient(hc *http.Client) WeatherOption {
	return func(c *WeatherClient) {
		c.httpClient = hc
	}
}

// WithWeatherLimiter replaces the outbound request limiter
func WithWeatherLimiter(l *rate.Limiter) WeatherOption {
	return func(c *WeatherClient) {
		c.limiter = l
	}
}

// NewWeatherClient creates a client allowing one request per second
func NewWeatherClient(opts ...WeatherOption) *WeatherClient {
	c := &WeatherClient{
		baseURL:    DefaultWeatherURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		WeatherCode string `json:"weatherCode"`
	} `json:"current_condition"`
}

// Current implements WeatherSource
func (c *WeatherClient) Current(ctx context.Context, city string) (Weather, error) {
	const op = "WeatherClient.Current"

	if err := c.limiter.Wait(ctx); err != nil {
		return Weather{}, werrors.NewFetchError(op, "weather request throttled", err)
	}

	u := c.baseURL + "/" + url.PathEscape(city) + "?format=j1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Weather{}, werrors.NewError(werrors.CodeInvalidInput, "invalid weather request", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Weather{}, werrors.NewFetchError(op, "weather request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Weather{}, werrors.NewFetchError(op, "weather request failed",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body wttrResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Weather{}, werrors.NewFetchError(op, "invalid weather response", err)
	}
	if len(body.CurrentCondition) == 0 || body.CurrentCondition[0].TempC == "" {
		return Weather{}, werrors.NewFetchError(op, "weather response has no current condition", nil)
	}

	cur := body.CurrentCondition[0]
	return Weather{
		City:      city,
		TempC:     cur.TempC,
		Code:      cur.WeatherCode,
		Icon:      IconFor(cur.WeatherCode),
		FetchedAt: c.clock(),
	}, nil
}
