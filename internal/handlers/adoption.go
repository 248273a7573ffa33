package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petcare/internal/events"
	"petcare/internal/mailer"
	"petcare/internal/models"
)

type createAdoptionRequest struct {
	PetID         string `json:"petId" binding:"required"`
	ContactNumber string `json:"contactNumber" binding:"required"`
	Message       string `json:"message" binding:"required"`
}

type updateAdoptionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var errRequestDecided = errors.New("request already decided")

// pendingRequestFilter matches the request only while it is still open, so
// two concurrent decisions cannot both get past the finality gate.
func pendingRequestFilter(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "status": models.RequestStatusPending}
}

type petSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Image string             `json:"image"`
}

type userSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// adoptionRequestView is an AdoptionRequest with its referenced pet (and,
// for admins, user) fields resolved, the way the SPA renders request lists.
type adoptionRequestView struct {
	ID            primitive.ObjectID `json:"id"`
	User          primitive.ObjectID `json:"user"`
	Pet           primitive.ObjectID `json:"pet"`
	ContactNumber string             `json:"contactNumber"`
	Message       string             `json:"message"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	PetInfo       *petSummary        `json:"petInfo,omitempty"`
	UserInfo      *userSummary       `json:"userInfo,omitempty"`
}

// POST /api/adoption
// The pet must exist and still be listed for adoption. A second pending
// request from the same user for the same pet is rejected; a fresh request
// after a rejection is allowed.
func CreateAdoptionRequest(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/adoption"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createAdoptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		petID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.PetID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid petId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var pet models.Pet
		err = db.Collection("pets").FindOne(ctx, bson.M{"_id": petID}).Decode(&pet)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Pet not found")
			return
		}
		if err != nil {
			log.Println("[ADOPTION] [ERROR] pet lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if pet.Status != models.PetStatusForAdoption {
			respondWithError(c, http.StatusBadRequest, route, "Pet is not available for adoption")
			return
		}

		pending, err := db.Collection("adoption_requests").CountDocuments(ctx, bson.M{
			"user":   userID,
			"pet":    petID,
			"status": models.RequestStatusPending,
		})
		if err != nil {
			log.Println("[ADOPTION] [ERROR] duplicate check failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		if pending > 0 {
			respondWithError(c, http.StatusBadRequest, route, "You already have a pending request for this pet")
			return
		}

		now := time.Now()
		request := models.AdoptionRequest{
			User:          userID,
			Pet:           petID,
			ContactNumber: strings.TrimSpace(req.ContactNumber),
			Message:       strings.TrimSpace(req.Message),
			Status:        models.RequestStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		res, err := db.Collection("adoption_requests").InsertOne(ctx, request)
		if err != nil {
			log.Println("[ADOPTION] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			request.ID = id
		}

		log.Println("[ADOPTION] [INFO] request created for pet:", petID.Hex())
		c.JSON(http.StatusCreated, request)
	}
}

// GET /api/adoption/my-requests
func GetMyAdoptionRequests(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/adoption/my-requests"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		views, err := listAdoptionRequests(ctx, db, bson.M{"user": userID}, false)
		if err != nil {
			log.Println("[ADOPTION] [ERROR] my-requests failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, views)
	}
}

// GET /api/adoption (admin)
func GetAllAdoptionRequests(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/adoption"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		views, err := listAdoptionRequests(ctx, db, bson.M{}, true)
		if err != nil {
			log.Println("[ADOPTION] [ERROR] list failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, views)
	}
}

// PUT /api/adoption/:id (admin)
// Approving reassigns the pet inside the same transaction so a crash between
// the two writes cannot leave an approved request with an unchanged pet.
func UpdateAdoptionStatus(db *mongo.Database, pub *events.Publisher, mail *mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/adoption/:id"
		defer handlePanic(c, route)

		requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Request not found")
			return
		}

		var req updateAdoptionStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		newStatus := strings.TrimSpace(req.Status)
		if !models.ValidRequestStatus(newStatus) {
			respondWithError(c, http.StatusBadRequest, route,
				fmt.Sprintf("status must be one of %s, %s, %s",
					models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var request models.AdoptionRequest
		err = db.Collection("adoption_requests").FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Request not found")
			return
		}
		if err != nil {
			log.Println("[ADOPTION] [ERROR] request lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if models.TerminalRequestStatus(request.Status) {
			respondWithError(c, http.StatusBadRequest, route, "Request has already been "+strings.ToLower(request.Status))
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer session.EndSession(ctx)

		var petName string
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			now := time.Now()

			res, err := db.Collection("adoption_requests").UpdateOne(
				sessCtx,
				pendingRequestFilter(requestID),
				bson.M{"$set": bson.M{"status": newStatus, "updatedAt": now}},
			)
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, errRequestDecided
			}

			if newStatus != models.RequestStatusApproved {
				return nil, nil
			}

			var pet models.Pet
			err = db.Collection("pets").FindOneAndUpdate(
				sessCtx,
				bson.M{"_id": request.Pet},
				bson.M{"$set": bson.M{
					"status":    models.PetStatusOwned,
					"user":      request.User,
					"updatedAt": now,
				}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).Decode(&pet)
			if err == mongo.ErrNoDocuments {
				// Pet deleted after the request was filed; the request
				// decision still stands.
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			petName = pet.Name
			return nil, nil
		})
		if err != nil {
			// A concurrent decision won the conditional update.
			if errors.Is(err, errRequestDecided) {
				respondWithError(c, http.StatusBadRequest, route, "Request has already been decided")
				return
			}
			log.Println("[ADOPTION] [ERROR] status update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		request.Status = newStatus
		request.UpdatedAt = time.Now()

		if models.TerminalRequestStatus(newStatus) {
			pub.Publish(events.ExchangeAdoptionDecided, events.AdoptionDecidedEvent{
				RequestID: request.ID.Hex(),
				UserID:    request.User.Hex(),
				PetID:     request.Pet.Hex(),
				PetName:   petName,
				Status:    newStatus,
			})

			var requester models.User
			if err := db.Collection("users").FindOne(ctx, bson.M{"_id": request.User}).Decode(&requester); err == nil {
				mail.SendAdoptionDecision(requester.Email, petName, newStatus)
			}
		}

		log.Printf("[ADOPTION] [INFO] request %s -> %s", requestID.Hex(), newStatus)
		c.JSON(http.StatusOK, request)
	}
}

// loadUserSummaries fetches the referenced users in one batched $in query.
func loadUserSummaries(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]userSummary, error) {
	users := make(map[primitive.ObjectID]userSummary)
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.User
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, u := range docs {
		users[u.ID] = userSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return users, nil
}

// listAdoptionRequests resolves pet (and optionally user) references with a
// batched $in fetch, the populate step the SPA list screens need.
func listAdoptionRequests(ctx context.Context, db *mongo.Database, filter bson.M, withUsers bool) ([]adoptionRequestView, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection("adoption_requests").Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.AdoptionRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	petIDs := make([]primitive.ObjectID, 0, len(requests))
	userIDs := make([]primitive.ObjectID, 0, len(requests))
	for _, r := range requests {
		petIDs = append(petIDs, r.Pet)
		userIDs = append(userIDs, r.User)
	}

	pets := make(map[primitive.ObjectID]petSummary)
	if len(petIDs) > 0 {
		petCursor, err := db.Collection("pets").Find(ctx, bson.M{"_id": bson.M{"$in": petIDs}})
		if err != nil {
			return nil, err
		}
		defer petCursor.Close(ctx)

		var petDocs []models.Pet
		if err := petCursor.All(ctx, &petDocs); err != nil {
			return nil, err
		}
		for _, p := range petDocs {
			pets[p.ID] = petSummary{ID: p.ID, Name: p.Name, Image: p.Image}
		}
	}

	users := make(map[primitive.ObjectID]userSummary)
	if withUsers {
		users, err = loadUserSummaries(ctx, db, userIDs)
		if err != nil {
			return nil, err
		}
	}

	views := make([]adoptionRequestView, 0, len(requests))
	for _, r := range requests {
		view := adoptionRequestView{
			ID:            r.ID,
			User:          r.User,
			Pet:           r.Pet,
			ContactNumber: r.ContactNumber,
			Message:       r.Message,
			Status:        r.Status,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		}
		if pet, ok := pets[r.Pet]; ok {
			view.PetInfo = &pet
		}
		if user, ok := users[r.User]; ok && withUsers {
			view.UserInfo = &user
		}
		views = append(views, view)
	}

	return views, nil
}
