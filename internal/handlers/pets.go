package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petcare/internal/models"
)

var (
	errInvalidPetType   = errors.New("petType must be Dog or Cat")
	errInvalidPetStatus = errors.New("invalid pet status")
	errInvalidPetAge    = errors.New("age must not be negative")
)

type createPetRequest struct {
	Name        string `json:"name" binding:"required"`
	PetType     string `json:"petType" binding:"required"`
	Breed       string `json:"breed" binding:"required"`
	Age         int    `json:"age"`
	Status      string `json:"status"`
	Story       string `json:"story"`
	ShelterInfo string `json:"shelterInfo"`
	Image       string `json:"image"`
	Contact     string `json:"contact"`
}

// GET /api/pets/adoption
func GetAdoptionPets(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/pets/adoption"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("pets").Find(ctx, bson.M{"status": models.PetStatusForAdoption}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		pets := make([]models.Pet, 0)
		if err := cursor.All(ctx, &pets); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, pets)
	}
}

// GET /api/pets/adoption/:id
// 404 covers both a missing pet and one no longer listed for adoption.
func GetAdoptionPet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/pets/adoption/:id"
		defer handlePanic(c, route)

		petID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Pet not found or not for adoption")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var pet models.Pet
		err = db.Collection("pets").FindOne(ctx, bson.M{"_id": petID}).Decode(&pet)
		if err == mongo.ErrNoDocuments || (err == nil && pet.Status != models.PetStatusForAdoption) {
			respondWithError(c, http.StatusNotFound, route, "Pet not found or not for adoption")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, pet)
	}
}

// GET /api/pets/mypets
func GetMyPets(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/pets/mypets"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("pets").Find(ctx, bson.M{"user": userID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		pets := make([]models.Pet, 0)
		if err := cursor.All(ctx, &pets); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, pets)
	}
}

// POST /api/pets
func CreatePet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/pets"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createPetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		pet, err := buildPetFromRequest(req, userID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("pets").InsertOne(ctx, pet)
		if err != nil {
			log.Println("[PET] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			pet.ID = id
		}

		log.Println("[PET] [INFO] pet created:", pet.Name)
		c.JSON(http.StatusCreated, pet)
	}
}

func buildPetFromRequest(req createPetRequest, owner primitive.ObjectID) (models.Pet, error) {
	petType := strings.TrimSpace(req.PetType)
	if !models.ValidPetType(petType) {
		return models.Pet{}, errInvalidPetType
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.PetStatusOwned
	}
	if !models.ValidPetStatus(status) {
		return models.Pet{}, errInvalidPetStatus
	}

	if req.Age < 0 {
		return models.Pet{}, errInvalidPetAge
	}

	image := strings.TrimSpace(req.Image)
	if image == "" {
		image = models.DefaultPetImage
	}

	now := time.Now()
	return models.Pet{
		User:        owner,
		Name:        strings.TrimSpace(req.Name),
		PetType:     petType,
		Breed:       strings.TrimSpace(req.Breed),
		Age:         req.Age,
		Status:      status,
		Story:       strings.TrimSpace(req.Story),
		ShelterInfo: strings.TrimSpace(req.ShelterInfo),
		Image:       image,
		Contact:     strings.TrimSpace(req.Contact),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
