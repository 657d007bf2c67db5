package agency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iPurya/SkySniper/pkg/flights"
)

const (
	alibabaBaseURL = "https://www.alibaba.ir"
	alibabaAPIBase = "https://ws.alibaba.ir/api/v1/flights"

	alibabaTimeout = 15 * time.Second

	// International searches are asynchronous on the Alibaba side: a
	// proposal request is created, then polled until isCompleted.
	alibabaMaxPollAttempts  = 10
	alibabaDefaultPollDelay = 2 * time.Second
)

// AlibabaSource fetches fares from alibaba.ir, one of the largest Iranian
// online travel agencies. Domestic routes use a single availability call;
// international routes use the two-step proposal-request flow.
type AlibabaSource struct {
	*flights.BaseSource
	apiBase string
	siteURL string
}

// alibabaProposalRequest is the payload creating an international search.
type alibabaProposalRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Adult         int    `json:"adult"`
	Child         int    `json:"child"`
	Infant        int    `json:"infant"`
	FlightClass   string `json:"flightClass"`
}

// alibabaDomesticRequest is the payload for a domestic availability call.
type alibabaDomesticRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Adult         int    `json:"adult"`
	Child         int    `json:"child"`
	Infant        int    `json:"infant"`
}

type alibabaProposalCreated struct {
	Result struct {
		RequestID string `json:"requestId"`
	} `json:"result"`
}

type alibabaProposalResults struct {
	Result struct {
		Proposals            []alibabaProposal `json:"proposals"`
		IsCompleted          bool              `json:"isCompleted"`
		NextRequestThreshold int               `json:"nextRequestThreshold"` // milliseconds
	} `json:"result"`
}

type alibabaProposal struct {
	Total        float64 `json:"total"` // total price, IRR
	Seat         int     `json:"seat"`
	IsRefundable bool    `json:"isRefundable"`
	FlightGroup  struct {
		AirlineName       string `json:"airlineName"`
		Origin            string `json:"origin"`
		Destination       string `json:"destination"`
		DepartureDateTime string `json:"departureDateTime"`
		ArrivalDateTime   string `json:"arrivalDateTime"`
		DurationMin       int    `json:"durationMin"`
		NumberOfStop      int    `json:"numberOfStop"`
		CabinTypeName     string `json:"cabinTypeName"`
		FlightDetails     []struct {
			FlightNumber     string `json:"flightNumber"`
			MarketingCarrier string `json:"marketingCarrier"`
		} `json:"flightDetails"`
	} `json:"leavingFlightGroup"`
}

type alibabaDomesticResults struct {
	Result struct {
		Departing []alibabaDomesticFlight `json:"departing"`
	} `json:"result"`
}

type alibabaDomesticFlight struct {
	AirlineName       string  `json:"airlineName"`
	FlightNumber      string  `json:"flightNumber"`
	DepartureDateTime string  `json:"departureDateTime"`
	ArrivalDateTime   string  `json:"arrivalDateTime"`
	AdultPrice        float64 `json:"adultPrice"`
	Price             float64 `json:"price"`
	CabinType         string  `json:"cabinType"`
	FlightDuration    int     `json:"flightDuration"`
	Seat              int     `json:"seat"`
}

// NewAlibabaSource creates a new Alibaba source.
func NewAlibabaSource(config map[string]interface{}) (flights.Source, error) {
	logger := flights.GetLoggerFromConfig(config)
	timeout := flights.GetTimeoutFromConfig(config, alibabaTimeout)

	base := flights.NewBaseSource("alibaba", timeout, logger)
	base.SetHeader("Origin", alibabaBaseURL)
	base.SetHeader("Referer", alibabaBaseURL+"/")

	return &AlibabaSource{
		BaseSource: base,
		apiBase:    flights.GetStringFromConfig(config, "api_url", alibabaAPIBase),
		siteURL:    alibabaBaseURL,
	}, nil
}

// Search fetches raw listings for the given parameters.
func (s *AlibabaSource) Search(ctx context.Context, params flights.SearchParams) ([]flights.Listing, error) {
	if params.Domestic {
		return s.searchDomestic(ctx, params)
	}
	return s.searchInternational(ctx, params)
}

func (s *AlibabaSource) searchInternational(ctx context.Context, params flights.SearchParams) ([]flights.Listing, error) {
	payload := alibabaProposalRequest{
		Origin:        cityCode(params.Origin),
		Destination:   cityCode(params.Destination),
		DepartureDate: params.Date,
		Adult:         params.Adults,
		Child:         params.Children,
		Infant:        params.Infants,
		FlightClass:   params.CabinClass,
	}

	var created alibabaProposalCreated
	if err := s.PostJSON(ctx, s.apiBase+"/international/proposal-requests", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create proposal request: %w", err)
	}
	if created.Result.RequestID == "" {
		return nil, fmt.Errorf("%w", ErrNoRequestID)
	}

	return s.pollProposals(ctx, created.Result.RequestID, params)
}

// pollProposals polls the proposal endpoint until the search completes or
// the attempt budget runs out. Proposals repeat across polls, so listings
// are deduplicated before being returned.
func (s *AlibabaSource) pollProposals(ctx context.Context, requestID string, params flights.SearchParams) ([]flights.Listing, error) {
	seen := make(map[string]struct{})
	var listings []flights.Listing

	url := fmt.Sprintf("%s/international/proposal-requests/%s", s.apiBase, requestID)

	for attempt := 0; attempt < alibabaMaxPollAttempts; attempt++ {
		var results alibabaProposalResults
		if err := s.GetJSON(ctx, url, &results); err != nil {
			return nil, fmt.Errorf("failed to poll proposals: %w", err)
		}

		for _, proposal := range results.Result.Proposals {
			listing := s.parseProposal(proposal, params)
			key := fmt.Sprintf("%s|%s|%s", listing.FlightNumber, listing.DepartureTime.Format(time.RFC3339), listing.Price.String())
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			listings = append(listings, listing)
		}

		if results.Result.IsCompleted {
			return listings, nil
		}

		delay := alibabaDefaultPollDelay
		if results.Result.NextRequestThreshold > 0 {
			delay = time.Duration(results.Result.NextRequestThreshold) * time.Millisecond
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	// Partial results are better than none when the search never settles.
	if len(listings) > 0 {
		s.Logger().Warn("Proposal search did not complete, returning partial results",
			"source", s.Name(), "listings", len(listings))
		return listings, nil
	}
	return nil, fmt.Errorf("%w: request %s", flights.ErrSearchIncomplete, requestID)
}

func (s *AlibabaSource) searchDomestic(ctx context.Context, params flights.SearchParams) ([]flights.Listing, error) {
	payload := alibabaDomesticRequest{
		Origin:        params.Origin,
		Destination:   params.Destination,
		DepartureDate: params.Date,
		Adult:         params.Adults,
		Child:         params.Children,
		Infant:        params.Infants,
	}

	var results alibabaDomesticResults
	if err := s.PostJSON(ctx, s.apiBase+"/domestic/available", payload, &results); err != nil {
		return nil, fmt.Errorf("failed to fetch domestic availability: %w", err)
	}

	listings := make([]flights.Listing, 0, len(results.Result.Departing))
	for _, item := range results.Result.Departing {
		price := item.AdultPrice
		if price == 0 {
			price = item.Price
		}
		listings = append(listings, flights.Listing{
			Airline:       item.AirlineName,
			FlightNumber:  item.FlightNumber,
			DepartureTime: parseISOTime(item.DepartureDateTime),
			ArrivalTime:   parseISOTime(item.ArrivalDateTime),
			Price:         decimal.NewFromFloat(price),
			Currency:      "IRR",
			Stops:         0, // domestic flights are non-stop
			DurationMin:   item.FlightDuration,
			CabinClass:    strings.ToLower(item.CabinType),
			SeatsLeft:     item.Seat,
			DeepLink:      s.deepLink(params),
		})
	}

	return listings, nil
}

func (s *AlibabaSource) parseProposal(p alibabaProposal, params flights.SearchParams) flights.Listing {
	group := p.FlightGroup

	// Flight number from the first segment, annotated with the number of
	// further segments (e.g. "TK879 (+1)").
	flightNumber := ""
	if len(group.FlightDetails) > 0 {
		first := group.FlightDetails[0]
		flightNumber = first.MarketingCarrier + first.FlightNumber
		if extra := len(group.FlightDetails) - 1; extra > 0 {
			flightNumber = fmt.Sprintf("%s (+%d)", flightNumber, extra)
		}
	}

	return flights.Listing{
		Airline:       group.AirlineName,
		FlightNumber:  flightNumber,
		DepartureTime: parseISOTime(group.DepartureDateTime),
		ArrivalTime:   parseISOTime(group.ArrivalDateTime),
		Price:         decimal.NewFromFloat(p.Total),
		Currency:      "IRR",
		Stops:         group.NumberOfStop,
		DurationMin:   group.DurationMin,
		CabinClass:    strings.ToLower(group.CabinTypeName),
		SeatsLeft:     p.Seat,
		Refundable:    p.IsRefundable,
		DeepLink:      s.deepLink(params),
	}
}

func (s *AlibabaSource) deepLink(params flights.SearchParams) string {
	return fmt.Sprintf("%s/flights/%s-%s?departing=%s&adult=%d&child=%d&infant=%d",
		s.siteURL, params.Origin, params.Destination, params.Date,
		params.Adults, params.Children, params.Infants)
}
