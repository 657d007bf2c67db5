package agency

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iPurya/SkySniper/pkg/flights"
)

const (
	ataairBaseURL = "https://app.ataair.ir"
	ataairAPIURL  = "https://reservationcoreapi.ataair.ir/Reservation/v1/Flight-api/Available/GetAvailable"
	ataairTimeout = 15 * time.Second
)

// Persian cabin names as returned by the Ata reservation API.
var ataairCabinNames = map[string]string{
	"اکونومی":   "economy",
	"بیزینس":    "business",
	"فرست کلاس": "first",
}

// AtaairSource fetches fares from ataair.ir, the booking app of Ata
// Airlines. Ata only serves domestic routes; international searches are
// reported as unsupported rather than as empty results.
type AtaairSource struct {
	*flights.BaseSource
	apiURL  string
	siteURL string
}

// ataairRequest is the availability payload. Passenger counts are strings
// because the API rejects numeric values.
type ataairRequest struct {
	OriginIataCode        string `json:"originIataCode"`
	DestinationIataCode   string `json:"destinationIataCode"`
	DepartureDate         string `json:"departureDate"`
	AdultCount            string `json:"adultCount"`
	ChildCount            string `json:"childCount"`
	InfantCount           string `json:"infantCount"`
	AirTripType           int    `json:"airTripType"`           // 0 = one-way
	FlightLegType         int    `json:"flightLegType"`         // 0 = departure
	FlightReservationType int    `json:"flightReservationType"` // 0 = normal
}

type ataairResponse struct {
	Availables []ataairAvailable `json:"availables"`
}

type ataairAvailable struct {
	TotalPrice        float64           `json:"totalPrice"` // IRR
	SeatRemain        int               `json:"seatRemain"`
	FlightItineraries []ataairItinerary `json:"flightItineraries"`
}

type ataairItinerary struct {
	OriginIataCode      string `json:"originIataCode"`
	DestinationIataCode string `json:"destinationIataCode"`
	DepartureDateTime   string `json:"departureDateTime"`
	ArrivalDateTime     string `json:"arrivalDateTime"`
	AirlineCode         string `json:"airlineCode"`
	FlightNumber        string `json:"flightNumber"`
	CabinTypeName       string `json:"cabinTypeName"`
	RefundMethodType    string `json:"refundMethodType"`
}

// NewAtaairSource creates a new Ataair source.
func NewAtaairSource(config map[string]interface{}) (flights.Source, error) {
	logger := flights.GetLoggerFromConfig(config)
	timeout := flights.GetTimeoutFromConfig(config, ataairTimeout)

	base := flights.NewBaseSource("ataair", timeout, logger)
	base.SetHeader("Origin", ataairBaseURL)
	base.SetHeader("Referer", ataairBaseURL+"/")

	return &AtaairSource{
		BaseSource: base,
		apiURL:     flights.GetStringFromConfig(config, "api_url", ataairAPIURL),
		siteURL:    ataairBaseURL,
	}, nil
}

// Search fetches raw listings for the given parameters.
func (s *AtaairSource) Search(ctx context.Context, params flights.SearchParams) ([]flights.Listing, error) {
	if !params.Domestic {
		return nil, fmt.Errorf("%w: ataair serves domestic routes only", flights.ErrRouteNotSupported)
	}

	payload := ataairRequest{
		OriginIataCode:      params.Origin,
		DestinationIataCode: params.Destination,
		// Iran Standard Time
		DepartureDate: params.Date + "T00:00:00+03:30",
		AdultCount:    strconv.Itoa(params.Adults),
		ChildCount:    strconv.Itoa(params.Children),
		InfantCount:   strconv.Itoa(params.Infants),
	}

	var response ataairResponse
	if err := s.PostJSON(ctx, s.apiURL, payload, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}

	listings := make([]flights.Listing, 0, len(response.Availables))
	for _, item := range response.Availables {
		if len(item.FlightItineraries) == 0 {
			continue
		}
		first := item.FlightItineraries[0]

		cabin, ok := ataairCabinNames[first.CabinTypeName]
		if !ok {
			cabin = "economy"
		}

		airlineCode := first.AirlineCode
		if airlineCode == "" {
			airlineCode = "I3"
		}

		listings = append(listings, flights.Listing{
			Airline:       "Ata Airlines",
			FlightNumber:  airlineCode + first.FlightNumber,
			DepartureTime: parseISOTime(first.DepartureDateTime),
			ArrivalTime:   parseISOTime(first.ArrivalDateTime),
			Price:         decimal.NewFromFloat(item.TotalPrice),
			Currency:      "IRR",
			Stops:         len(item.FlightItineraries) - 1,
			CabinClass:    cabin,
			SeatsLeft:     item.SeatRemain,
			Refundable:    strings.EqualFold(first.RefundMethodType, "online"),
			DeepLink:      s.deepLink(params),
		})
	}

	return listings, nil
}

func (s *AtaairSource) deepLink(params flights.SearchParams) string {
	return fmt.Sprintf("%s/flight/available?origin=%s&destination=%s&date=%s",
		s.siteURL, params.Origin, params.Destination, params.Date)
}
