package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"time"

	"munchmate_server/models"
)

const (
	defaultPlacesBaseURL = "https://maps.googleapis.com"
	maxCandidates        = 20
	minRating            = 4.2
	earthRadiusMiles     = 3959
)

// PlacesService talks to the Google geocoding and places APIs to resolve a
// location and assemble the candidate restaurant list for a session.
type PlacesService struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewPlacesServiceFromEnv builds the client from GOOGLE_PLACES_API_KEY.
func NewPlacesServiceFromEnv() *PlacesService {
	return &PlacesService{
		APIKey:     os.Getenv("GOOGLE_PLACES_API_KEY"),
		BaseURL:    defaultPlacesBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type placeResult struct {
	PlaceID    string  `json:"place_id"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	PriceLevel int     `json:"price_level"`
	Vicinity   string  `json:"vicinity"`
	Photos     []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type nearbyResponse struct {
	Results []placeResult `json:"results"`
}

// ResolveCoordinates geocodes a free-form locality string (usually a zip
// code) into coordinates.
func (ps *PlacesService) ResolveCoordinates(ctx context.Context, locationText string) (float64, float64, error) {
	endpoint := fmt.Sprintf("%s/maps/api/geocode/json?address=%s&key=%s",
		ps.BaseURL, url.QueryEscape(locationText), url.QueryEscape(ps.APIKey))

	var response geocodeResponse
	if err := ps.getJSON(ctx, endpoint, &response); err != nil {
		return 0, 0, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(response.Results) == 0 {
		return 0, 0, fmt.Errorf("%w: could not geocode %q", ErrNoCandidatesFound, locationText)
	}

	location := response.Results[0].Geometry.Location
	return location.Lat, location.Lng, nil
}

// FetchCandidates returns up to 20 nearby restaurants rated at least 4.2
// with at least one photo, in random order, converted into session-ready
// records with the distance from the origin precomputed.
func (ps *PlacesService) FetchCandidates(ctx context.Context, lat, lng float64, radiusMeters int) ([]models.Restaurant, error) {
	endpoint := fmt.Sprintf("%s/maps/api/place/nearbysearch/json?location=%f,%f&radius=%d&type=restaurant&key=%s&minprice=0&maxprice=4",
		ps.BaseURL, lat, lng, radiusMeters, url.QueryEscape(ps.APIKey))

	var response nearbyResponse
	if err := ps.getJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("restaurant search failed: %w", err)
	}

	filtered := make([]placeResult, 0, len(response.Results))
	for _, place := range response.Results {
		if place.Rating >= minRating && place.Name != "" && len(place.Photos) > 0 {
			filtered = append(filtered, place)
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoCandidatesFound
	}

	// Random order so every session sees a different slice of the area
	rand.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})
	if len(filtered) > maxCandidates {
		filtered = filtered[:maxCandidates]
	}

	restaurants := make([]models.Restaurant, 0, len(filtered))
	for _, place := range filtered {
		restaurants = append(restaurants, ps.toRestaurant(place, lat, lng))
	}
	return restaurants, nil
}

// toRestaurant converts a raw place record, computing the great-circle
// distance from the origin once, at session-creation time.
func (ps *PlacesService) toRestaurant(place placeResult, originLat, originLng float64) models.Restaurant {
	restaurant := models.Restaurant{
		ID:         place.PlaceID,
		Name:       place.Name,
		Rating:     place.Rating,
		PriceLevel: place.PriceLevel,
		Vicinity:   place.Vicinity,
		Latitude:   place.Geometry.Location.Lat,
		Longitude:  place.Geometry.Location.Lng,
	}
	if restaurant.PriceLevel == 0 {
		restaurant.PriceLevel = 1
	}
	if len(place.Photos) > 0 {
		restaurant.PhotoURL = ps.photoURL(place.Photos[0].PhotoReference)
	}

	distance := haversineMiles(originLat, originLng, place.Geometry.Location.Lat, place.Geometry.Location.Lng)
	restaurant.Distance = fmt.Sprintf("%.1f mi", distance)
	return restaurant
}

func (ps *PlacesService) photoURL(photoReference string) string {
	return fmt.Sprintf("%s/maps/api/place/photo?maxwidth=400&photoreference=%s&key=%s",
		ps.BaseURL, url.QueryEscape(photoReference), url.QueryEscape(ps.APIKey))
}

func (ps *PlacesService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := ps.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// haversineMiles computes the great-circle distance between two points.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}
