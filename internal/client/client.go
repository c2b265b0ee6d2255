package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aquaponics-lab/aquamon/internal/model"
)

const DefaultTimeout = 5 * time.Second

// Client talks to the aquaponics REST server: it fetches the latest reading and
// issues fire-and-forget control commands. Requests are bounded by the connect
// and read timeouts; there are no retries, the poll interval is the retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: timeout}).DialContext,
			},
		},
	}
}

// latestPayload mirrors the /latest JSON contract. Every field is a pointer so
// a missing key is distinguishable from a zero value.
type latestPayload struct {
	Message *string `json:"message"`

	WaterTempC         *float64 `json:"water_temp_C"`
	AirTempC           *float64 `json:"air_temp_C"`
	PH                 *float64 `json:"pH"`
	DissolvedOxygenMgL *float64 `json:"dissolved_oxygen_mgL"`
	AmmoniaMgL         *float64 `json:"ammonia_mgL"`
	WaterLevelPercent  *float64 `json:"water_level_percent"`
	ECuScm             *float64 `json:"ec_uScm"`
	HumidityPercent    *float64 `json:"humidity_percent"`
	LightLux           *float64 `json:"light_lux"`

	Diagnosis   *string `json:"diagnosis"`
	PumpStatus  *string `json:"pump_status"`
	LightStatus *string `json:"light_status"`
	Timestamp   *string `json:"timestamp"`
}

// FetchLatest GETs the latest sensor reading. A body carrying a message field is
// a successful placeholder reading, not an error. Full readings require every
// numeric channel; optional string fields fall back to sentinels instead.
func (c *Client) FetchLatest(ctx context.Context) (*model.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var payload latestPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}

	if payload.Message != nil {
		log.Debug().Str("message", *payload.Message).Msg("Server returned placeholder reading")
		return model.PlaceholderReading(*payload.Message), nil
	}

	return buildReading(&payload)
}

func buildReading(p *latestPayload) (*model.Reading, error) {
	required := []struct {
		name string
		val  *float64
	}{
		{"water_temp_C", p.WaterTempC},
		{"air_temp_C", p.AirTempC},
		{"pH", p.PH},
		{"dissolved_oxygen_mgL", p.DissolvedOxygenMgL},
		{"ammonia_mgL", p.AmmoniaMgL},
		{"water_level_percent", p.WaterLevelPercent},
		{"ec_uScm", p.ECuScm},
		{"humidity_percent", p.HumidityPercent},
		{"light_lux", p.LightLux},
	}
	for _, f := range required {
		if f.val == nil {
			return nil, &ParseError{Msg: "missing required field " + f.name}
		}
	}

	return &model.Reading{
		WaterTempC:         *p.WaterTempC,
		AirTempC:           *p.AirTempC,
		PH:                 *p.PH,
		DissolvedOxygenMgL: *p.DissolvedOxygenMgL,
		AmmoniaMgL:         *p.AmmoniaMgL,
		WaterLevelPercent:  *p.WaterLevelPercent,
		ECuScm:             *p.ECuScm,
		HumidityPercent:    *p.HumidityPercent,
		LightLux:           *p.LightLux,
		Diagnosis:          stringOr(p.Diagnosis, "Unknown"),
		PumpStatus:         stringOr(p.PumpStatus, "Unknown"),
		LightStatus:        stringOr(p.LightStatus, "OFF"),
		Timestamp:          stringOr(p.Timestamp, "N/A"),
	}, nil
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// SendCommand POSTs a control command. Success is HTTP 200; failures are typed
// the same way fetches are so callers can surface them as transient notices.
func (c *Client) SendCommand(ctx context.Context, cmd model.CommandRequest) error {
	url, err := c.commandURL(cmd)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ServerError{StatusCode: resp.StatusCode}
	}

	log.Info().
		Str("target", string(cmd.Target)).
		Str("state", string(cmd.State)).
		Bool("enable", cmd.Enable).
		Msg("Control command accepted")
	return nil
}

func (c *Client) commandURL(cmd model.CommandRequest) (string, error) {
	switch cmd.Target {
	case model.TargetPump, model.TargetLight:
		return fmt.Sprintf("%s/control/%s?state=%s", c.baseURL, cmd.Target, cmd.State), nil
	case model.TargetFailureSim:
		return fmt.Sprintf("%s/control/simulate-failure?enable=%s", c.baseURL, strconv.FormatBool(cmd.Enable)), nil
	default:
		return "", fmt.Errorf("unknown command target: %q", cmd.Target)
	}
}
