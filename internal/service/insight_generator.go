package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stayview/bookinsightsapi/internal/config"
	"github.com/stayview/bookinsightsapi/internal/models"
	"github.com/stayview/bookinsightsapi/pkg/utils/zaplogger"
)

var (
	// ErrUpstream is returned when the generator endpoint is unreachable
	// or answers with a non-success status
	ErrUpstream = errors.New("insight generator request failed")
	// ErrBadPayload is returned when the generator's text cannot be
	// parsed into the expected insights shape
	ErrBadPayload = errors.New("insight generator returned an unexpected payload")
)

// requiredInsightFields are the top-level keys the generator is instructed
// to return; a payload missing any of them is rejected.
var requiredInsightFields = []string{
	"date",
	"totalArrivals",
	"arrivalPercentage",
	"memberArrivals",
	"generalGuestArrivals",
	"departuresToday",
	"occupancyRate",
	"ADR",
	"guestBirthdays",
	"ageGroupSegmentation",
	"canceledBookings",
	"frequentUnits",
	"monthlyIncome",
	"yearlyIncome",
}

// InsightService calls the generative-language API to turn booking data
// into a structured insights summary. A single attempt per request, no
// retries: the caller reports failures as recoverable 500s.
type InsightService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewInsightService creates a new insight generator service
func NewInsightService(cfg *config.Config) (*InsightService, error) {
	timeout, err := time.ParseDuration(cfg.GeminiTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid generator timeout %q: %v", cfg.GeminiTimeout, err)
	}
	return &InsightService{
		apiKey:  cfg.GeminiAPIKey,
		baseURL: strings.TrimSuffix(cfg.GeminiBaseURL, "/"),
		model:   cfg.GeminiModel,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// generateContent request/response wire types for the generativelanguage API
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// GenerateInsights asks the generator for the insights of a year-month.
// rawData, when non-empty, is embedded in the prompt verbatim.
func (s *InsightService) GenerateInsights(ctx context.Context, year, month, rawData string) (*models.Insights, error) {
	prompt := buildInsightPrompt(year, month, rawData)

	reqBody, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		zaplogger.Error("insight generator returned non-success status", zaplogger.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrBadPayload)
	}

	return parseInsightsText(genResp.Candidates[0].Content.Parts[0].Text)
}

// buildInsightPrompt builds the instruction sent to the generator. The JSON
// skeleton keeps the model anchored to the schema the dashboard expects.
func buildInsightPrompt(year, month, rawData string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Analyze the booking data for %s-%s and generate a single JSON object:
{
  "date": "%s-%s",
  "totalArrivals": <total arrivals>,
  "arrivalPercentage": <arrival percentage>,
  "memberArrivals": <total member arrivals>,
  "generalGuestArrivals": <total general guest arrivals>,
  "departuresToday": <total departures>,
  "occupancyRate": <average occupancy rate>,
  "ADR": <average daily rate>,
  "guestBirthdays": [ { "name": "John Doe", "birthday": "YYYY-MM-DD" } ],
  "ageGroupSegmentation": { "child": <total child count>, "adult": <total adult count>, "senior": <total senior count> },
  "canceledBookings": { "count": <total cancellations>, "percentage": <cancellation percentage> },
  "frequentUnits": [ { "unitId": "A101", "bookings": <most frequent bookings count> } ],
  "monthlyIncome": <total income for the selected month>,
  "yearlyIncome": <total income for the selected year>
}
`, year, month, year, month)
	if rawData != "" {
		fmt.Fprintf(&sb, "\nBooking Data:\n%s\n", rawData)
	}
	sb.WriteString("Return only raw JSON.")
	return sb.String()
}

// parseInsightsText strips code-fence markup from the generator's text and
// parses it as an insights object, rejecting payloads that are missing
// expected fields.
func parseInsightsText(text string) (*models.Insights, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	for _, field := range requiredInsightFields {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrBadPayload, field)
		}
	}

	var insights models.Insights
	if err := json.Unmarshal([]byte(cleaned), &insights); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if insights.Date == "" {
		return nil, fmt.Errorf("%w: empty date", ErrBadPayload)
	}

	return &insights, nil
}
