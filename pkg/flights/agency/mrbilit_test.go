package agency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iPurya/SkySniper/pkg/flights"
)

func mrbilitSearchResponse() map[string]interface{} {
	leg := map[string]interface{}{
		"OriginCode":      "THR",
		"DestinationCode": "KIH",
		"DepartureTime":   "2026-09-10T14:20:00",
		"ArrivalTime":     "2026-09-10T16:05:00",
		"JourneyTime":     "01:45:00",
		"AirlineCode":     "EP",
		"FlightNumber":    "3970",
		"Stops":           0,
		"Airline": map[string]interface{}{
			"EnglishTitle": "Iran Aseman",
			"PersianTitle": "آسمان",
		},
	}

	return map[string]interface{}{
		"Flights": []map[string]interface{}{
			{
				"Segments": []map[string]interface{}{
					{"TotalTime": "01:45:00", "Legs": []interface{}{leg}},
				},
				"Prices": []map[string]interface{}{
					{
						"CabinClass": "Economy",
						"Capacity":   7,
						"IsCharter":  false,
						"PassengerFares": []map[string]interface{}{
							{"PaxType": "CHD", "TotalFare": 15000000},
							{"PaxType": "ADL", "TotalFare": 19500000},
						},
					},
					{
						"CabinClass": "Economy",
						"Capacity":   2,
						"IsCharter":  true,
						"PassengerFares": []map[string]interface{}{
							{"PaxType": "CHD", "TotalFare": 14000000},
						},
					},
				},
			},
			{
				// No segments; must be skipped.
				"Prices": []map[string]interface{}{
					{"PassengerFares": []map[string]interface{}{{"PaxType": "ADL", "TotalFare": 1}}},
				},
			},
		},
	}
}

func TestMrbilitSource_FareOptionsExpand(t *testing.T) {
	var gotRequest mrbilitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			t.Errorf("Expected bearer token, got '%s'", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json-patch+json" {
			t.Errorf("Unexpected content type '%s'", ct)
		}
		if r.Header.Get("sessionid") == "" || r.Header.Get("x-playerid") == "" {
			t.Error("Expected session headers")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		json.NewEncoder(w).Encode(mrbilitSearchResponse())
	}))
	defer server.Close()

	source, err := NewMrbilitSource(map[string]interface{}{
		"api_url": server.URL,
		"timeout": 5000,
	})
	if err != nil {
		t.Fatalf("NewMrbilitSource failed: %v", err)
	}

	params := flights.SearchParams{
		Origin:      "THR",
		Destination: "KIH",
		Date:        "2026-09-10",
		Adults:      1,
		Domestic:    true,
	}

	listings, err := source.Search(context.Background(), params)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(gotRequest.Routes) != 1 || gotRequest.Routes[0].DestinationCode != "KIH" {
		t.Errorf("Expected a single THR-KIH route, got %+v", gotRequest.Routes)
	}

	// One listing per fare option; the second flight has no segments.
	if len(listings) != 2 {
		t.Fatalf("Expected 2 listings, got %d", len(listings))
	}

	regular := listings[0]
	if regular.Airline != "Iran Aseman" {
		t.Errorf("Expected English airline title, got '%s'", regular.Airline)
	}
	if regular.FlightNumber != "EP3970" {
		t.Errorf("Expected flight number 'EP3970', got '%s'", regular.FlightNumber)
	}
	if !regular.Price.Equal(decimal.NewFromInt(19500000)) {
		t.Errorf("Expected the ADL fare 19500000, got %s", regular.Price)
	}
	if regular.DurationMin != 105 {
		t.Errorf("Expected 105 minute journey, got %d", regular.DurationMin)
	}
	if regular.Charter || !regular.Refundable {
		t.Error("Expected a refundable non-charter listing")
	}

	charter := listings[1]
	// No ADL fare on the charter option; first fare is the fallback.
	if !charter.Price.Equal(decimal.NewFromInt(14000000)) {
		t.Errorf("Expected fallback fare 14000000, got %s", charter.Price)
	}
	if !charter.Charter || charter.Refundable {
		t.Error("Expected a non-refundable charter listing")
	}
	if charter.SeatsLeft != 2 {
		t.Errorf("Expected 2 seats on the charter option, got %d", charter.SeatsLeft)
	}
}

func TestMrbilitSource_InternationalWidensDestination(t *testing.T) {
	var gotRequest mrbilitRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"Flights": []interface{}{}})
	}))
	defer server.Close()

	source, err := NewMrbilitSource(map[string]interface{}{"api_url": server.URL})
	if err != nil {
		t.Fatalf("NewMrbilitSource failed: %v", err)
	}

	params := flights.SearchParams{
		Origin:      "THR",
		Destination: "IST",
		Date:        "2026-09-10",
		Adults:      1,
	}

	listings, err := source.Search(context.Background(), params)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("Expected no listings, got %d", len(listings))
	}

	if gotRequest.Routes[0].DestinationCode != "ISTALL" {
		t.Errorf("Expected city-wide destination ISTALL, got %s", gotRequest.Routes[0].DestinationCode)
	}
}
