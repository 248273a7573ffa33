package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestParseGeoQueryAbsent(t *testing.T) {
	geo, err := parseGeoQuery("", "", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if geo != nil {
		t.Fatalf("expected nil geo query, got %+v", geo)
	}
}

func TestParseGeoQueryDefaults(t *testing.T) {
	geo, err := parseGeoQuery("6.9271", "79.8612", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if geo == nil {
		t.Fatal("expected a geo query")
	}
	if geo.Lat != 6.9271 || geo.Lng != 79.8612 {
		t.Fatalf("unexpected coordinates: %+v", geo)
	}
	if geo.RadiusM != defaultGeoRadiusM {
		t.Fatalf("expected default radius %d, got %v", defaultGeoRadiusM, geo.RadiusM)
	}
}

func TestParseGeoQueryExplicitRadius(t *testing.T) {
	geo, err := parseGeoQuery("6.9271", "79.8612", "2500")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if geo.RadiusM != 2500 {
		t.Fatalf("expected radius 2500, got %v", geo.RadiusM)
	}
}

func TestParseGeoQueryInvalid(t *testing.T) {
	cases := []struct {
		name             string
		lat, lng, radius string
	}{
		{"lat without lng", "6.9", "", ""},
		{"lng without lat", "", "79.8", ""},
		{"lat not a number", "north", "79.8", ""},
		{"lng not a number", "6.9", "east", ""},
		{"lat out of range", "91", "79.8", ""},
		{"lng out of range", "6.9", "-181", ""},
		{"radius not a number", "6.9", "79.8", "near"},
		{"radius zero", "6.9", "79.8", "0"},
		{"radius negative", "6.9", "79.8", "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseGeoQuery(tc.lat, tc.lng, tc.radius); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBuildServiceFilterWithoutGeo(t *testing.T) {
	filter := buildServiceFilter(nil)
	if len(filter) != 0 {
		t.Fatalf("expected empty filter, got %v", filter)
	}
}

func TestBuildServiceFilterNearShape(t *testing.T) {
	filter := buildServiceFilter(&geoQuery{Lat: 6.9271, Lng: 79.8612, RadiusM: 2500})

	location, ok := filter["location"].(bson.M)
	if !ok {
		t.Fatalf("expected location clause, got %v", filter)
	}
	near, ok := location["$near"].(bson.M)
	if !ok {
		t.Fatalf("expected $near clause, got %v", location)
	}
	if near["$maxDistance"] != 2500.0 {
		t.Fatalf("expected $maxDistance 2500, got %v", near["$maxDistance"])
	}

	geometry, ok := near["$geometry"].(bson.M)
	if !ok {
		t.Fatalf("expected $geometry clause, got %v", near)
	}
	if geometry["type"] != "Point" {
		t.Fatalf("expected Point geometry, got %v", geometry["type"])
	}

	coords, ok := geometry["coordinates"].([]float64)
	if !ok || len(coords) != 2 {
		t.Fatalf("expected [lng, lat] coordinates, got %v", geometry["coordinates"])
	}
	// GeoJSON order is longitude first.
	if coords[0] != 79.8612 || coords[1] != 6.9271 {
		t.Fatalf("expected lng-first coordinates, got %v", coords)
	}
}
