package handlers

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"petcare/internal/models"
)

func TestBuildPetFromRequestDefaults(t *testing.T) {
	owner := primitive.NewObjectID()
	pet, err := buildPetFromRequest(createPetRequest{
		Name:    "  Rex ",
		PetType: "Dog",
		Breed:   "Labrador",
		Age:     3,
	}, owner)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pet.User != owner {
		t.Fatalf("expected owner %s, got %s", owner.Hex(), pet.User.Hex())
	}
	if pet.Name != "Rex" {
		t.Fatalf("expected trimmed name, got %q", pet.Name)
	}
	if pet.Status != models.PetStatusOwned {
		t.Fatalf("expected default status %q, got %q", models.PetStatusOwned, pet.Status)
	}
	if pet.Image != models.DefaultPetImage {
		t.Fatalf("expected default image, got %q", pet.Image)
	}
	if pet.CreatedAt.IsZero() || pet.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestBuildPetFromRequestExplicitStatus(t *testing.T) {
	pet, err := buildPetFromRequest(createPetRequest{
		Name:    "Misty",
		PetType: "Cat",
		Breed:   "Siamese",
		Age:     2,
		Status:  models.PetStatusForAdoption,
		Image:   "/images/misty.png",
	}, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pet.Status != models.PetStatusForAdoption {
		t.Fatalf("expected status %q, got %q", models.PetStatusForAdoption, pet.Status)
	}
	if pet.Image != "/images/misty.png" {
		t.Fatalf("unexpected image: %q", pet.Image)
	}
}

func TestBuildPetFromRequestRejections(t *testing.T) {
	owner := primitive.NewObjectID()
	cases := []struct {
		name string
		req  createPetRequest
		want error
	}{
		{"bad pet type", createPetRequest{Name: "Rex", PetType: "Hamster", Breed: "x"}, errInvalidPetType},
		{"lowercase pet type", createPetRequest{Name: "Rex", PetType: "dog", Breed: "x"}, errInvalidPetType},
		{"bad status", createPetRequest{Name: "Rex", PetType: "Dog", Breed: "x", Status: "Lost"}, errInvalidPetStatus},
		{"negative age", createPetRequest{Name: "Rex", PetType: "Dog", Breed: "x", Age: -1}, errInvalidPetAge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildPetFromRequest(tc.req, owner)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
