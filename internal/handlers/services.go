package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petcare/internal/models"
)

type serviceCreateRequest struct {
	Name    string   `json:"name" binding:"required"`
	Type    string   `json:"type" binding:"required"`
	Address string   `json:"address" binding:"required"`
	Phone   string   `json:"phone" binding:"required"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type serviceUpdateRequest struct {
	Name    *string  `json:"name"`
	Type    *string  `json:"type"`
	Address *string  `json:"address"`
	Phone   *string  `json:"phone"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type addReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// geoQuery is the optional lat/lng/radius triple on GET /api/services.
type geoQuery struct {
	Lat     float64
	Lng     float64
	RadiusM float64
}

const defaultGeoRadiusM = 10_000

func parseGeoQuery(latStr, lngStr, radiusStr string) (*geoQuery, error) {
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be provided together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, errors.New("invalid lat")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, errors.New("invalid lng")
	}

	radius := float64(defaultGeoRadiusM)
	if radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			return nil, errors.New("invalid radius")
		}
	}

	return &geoQuery{Lat: lat, Lng: lng, RadiusM: radius}, nil
}

func buildServiceFilter(geo *geoQuery) bson.M {
	filter := bson.M{}
	if geo != nil {
		filter["location"] = bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{geo.Lng, geo.Lat},
				},
				"$maxDistance": geo.RadiusM,
			},
		}
	}
	return filter
}

// GET /api/services
func GetServices(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/services"
		defer handlePanic(c, route)

		geo, err := parseGeoQuery(c.Query("lat"), c.Query("lng"), c.Query("radius"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("services").Find(ctx, buildServiceFilter(geo))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		services := make([]models.Service, 0)
		if err := cursor.All(ctx, &services); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, services)
	}
}

// GET /api/services/:id
func GetService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/services/:id"
		defer handlePanic(c, route)

		serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var service models.Service
		err = db.Collection("services").FindOne(ctx, bson.M{"_id": serviceID}).Decode(&service)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, service)
	}
}

// POST /api/services/:id/reviews
// A single $push keeps the append atomic; no server-side average is kept.
func AddServiceReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/services/:id/reviews"
		defer handlePanic(c, route)

		serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Rating < 1 || req.Rating > 5 {
			respondWithError(c, http.StatusBadRequest, route, "rating must be between 1 and 5")
			return
		}

		now := time.Now()
		review := models.Review{
			ID:        primitive.NewObjectID(),
			Name:      currentUserName(c),
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			User:      userID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("services").UpdateOne(
			ctx,
			bson.M{"_id": serviceID},
			bson.M{
				"$push": bson.M{"reviews": review},
				"$set":  bson.M{"updatedAt": now},
			},
		)
		if err != nil {
			log.Println("[SERVICE] [ERROR] review append failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}

		log.Println("[SERVICE] [INFO] review added to:", serviceID.Hex())
		c.JSON(http.StatusCreated, review)
	}
}

// POST /api/services (admin)
func CreateService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/services"
		defer handlePanic(c, route)

		var req serviceCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		serviceType := strings.TrimSpace(req.Type)
		if !models.ValidServiceType(serviceType) {
			respondWithError(c, http.StatusBadRequest, route, "invalid service type")
			return
		}

		now := time.Now()
		service := models.Service{
			Name:      strings.TrimSpace(req.Name),
			Type:      serviceType,
			Address:   strings.TrimSpace(req.Address),
			Phone:     strings.TrimSpace(req.Phone),
			Reviews:   []models.Review{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if req.Lat != nil && req.Lng != nil {
			service.Location = &models.GeoPoint{
				Type:        "Point",
				Coordinates: []float64{*req.Lng, *req.Lat},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("services").InsertOne(ctx, service)
		if err != nil {
			log.Println("[SERVICE] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			service.ID = id
		}

		c.JSON(http.StatusCreated, service)
	}
}

// PUT /api/services/:id (admin)
func UpdateService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/services/:id"
		defer handlePanic(c, route)

		serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}

		var req serviceUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		update := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}
		if req.Type != nil {
			serviceType := strings.TrimSpace(*req.Type)
			if !models.ValidServiceType(serviceType) {
				respondWithError(c, http.StatusBadRequest, route, "invalid service type")
				return
			}
			update["type"] = serviceType
		}
		if req.Address != nil {
			update["address"] = strings.TrimSpace(*req.Address)
		}
		if req.Phone != nil {
			update["phone"] = strings.TrimSpace(*req.Phone)
		}
		if req.Lat != nil && req.Lng != nil {
			update["location"] = models.GeoPoint{
				Type:        "Point",
				Coordinates: []float64{*req.Lng, *req.Lat},
			}
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Service
		err = db.Collection("services").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": serviceID},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// DELETE /api/services/:id (admin)
func DeleteService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/services/:id"
		defer handlePanic(c, route)

		serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("services").DeleteOne(ctx, bson.M{"_id": serviceID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Service not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Service removed"})
	}
}
