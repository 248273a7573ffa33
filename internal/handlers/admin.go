package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petcare/internal/models"
)

// GET /api/admin/stats
func GetAdminStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		userCount, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		petCount, err := db.Collection("pets").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		adoptionCount, err := db.Collection("pets").CountDocuments(ctx, bson.M{"status": models.PetStatusForAdoption})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		ownedCount, err := db.Collection("pets").CountDocuments(ctx, bson.M{"status": models.PetStatusOwned})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users":       userCount,
			"pets":        petCount,
			"forAdoption": adoptionCount,
			"ownedPets":   ownedCount,
		})
	}
}

// GET /api/admin/users
func GetAllUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("users").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		// password hashes never serialize (json:"-"), so the docs go out as is
		c.JSON(http.StatusOK, users)
	}
}

// DELETE /api/admin/users/:id
// Admin accounts cannot be deleted, not even by another admin.
func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/users/:id"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if user.IsAdmin {
			respondWithError(c, http.StatusBadRequest, route, "Cannot delete admin user")
			return
		}

		if _, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": user.ID}); err != nil {
			log.Println("[ADMIN] [ERROR] user delete failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		log.Println("[ADMIN] [INFO] user removed:", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "User removed"})
	}
}

// GET /api/admin/pets
func GetAllPets(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/pets"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("pets").Find(ctx, bson.M{}, findOptions)
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

// POST /api/admin/pets
// Admins list shelter pets directly for adoption.
func AdminCreatePet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/pets"
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
		if req.Status == "" {
			req.Status = models.PetStatusForAdoption
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
			log.Println("[ADMIN] [ERROR] pet insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			pet.ID = id
		}

		c.JSON(http.StatusCreated, pet)
	}
}

// DELETE /api/admin/pets/:id
func AdminDeletePet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/pets/:id"
		defer handlePanic(c, route)

		petID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Pet not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("pets").DeleteOne(ctx, bson.M{"_id": petID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Pet not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Pet removed"})
	}
}
