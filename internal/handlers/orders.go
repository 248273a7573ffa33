package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
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

type createOrderItemRequest struct {
	Product string `json:"product" binding:"required"`
	Qty     int    `json:"qty" binding:"required"`
}

type createOrderShippingRequest struct {
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

type createOrderRequest struct {
	OrderItems      []createOrderItemRequest   `json:"orderItems"`
	ShippingAddress createOrderShippingRequest `json:"shippingAddress" binding:"required"`
	TotalPrice      float64                    `json:"totalPrice"`
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type totalMismatchError struct {
	Client float64
	Server float64
}

func (e totalMismatchError) Error() string {
	return fmt.Sprintf("totalPrice mismatch: sent %.2f, calculated %.2f", e.Client, e.Server)
}

// totalsMatch tolerates float rounding between the SPA and the server.
func totalsMatch(client, server float64) bool {
	return math.Abs(client-server) < 0.01
}

// POST /api/orders
// Stock decrements and the order insert run in one transaction; the
// conditional countInStock filter keeps concurrent orders on the same
// product from driving stock negative.
func CreateOrder(db *mongo.Database, pub *events.Publisher, mail *mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := buildOrderFromRequest(req, userID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer session.EndSession(ctx)

		var orderID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			snapshotItems := make([]models.OrderItem, 0, len(order.OrderItems))
			calculatedTotal := 0.0

			for _, item := range order.OrderItems {
				var product models.Product
				err := db.Collection("products").FindOne(sessCtx, bson.M{"_id": item.Product}).Decode(&product)
				if err == mongo.ErrNoDocuments {
					return nil, productNotFoundError{ProductID: item.Product}
				}
				if err != nil {
					return nil, err
				}

				if product.CountInStock < item.Qty {
					return nil, outOfStockError{
						ProductID: item.Product,
						Available: product.CountInStock,
						Requested: item.Qty,
					}
				}

				snapshotItems = append(snapshotItems, models.OrderItem{
					Product: item.Product,
					Name:    product.Name,
					Qty:     item.Qty,
					Image:   product.Image,
					Price:   product.Price,
				})
				calculatedTotal += product.Price * float64(item.Qty)

				filter := bson.M{
					"_id":          item.Product,
					"countInStock": bson.M{"$gte": item.Qty},
				}
				update := bson.M{"$inc": bson.M{"countInStock": -item.Qty}}

				res, err := db.Collection("products").UpdateOne(sessCtx, filter, update)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: item.Product,
						Available: product.CountInStock,
						Requested: item.Qty,
					}
				}
			}

			if !totalsMatch(order.TotalPrice, calculatedTotal) {
				return nil, totalMismatchError{Client: order.TotalPrice, Server: calculatedTotal}
			}

			order.OrderItems = snapshotItems
			order.TotalPrice = calculatedTotal

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				orderID = id
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"message":   "Not enough stock",
					"product":   stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "Product not found",
					"product": notFoundErr.ProductID.Hex(),
				})
				return
			}
			var mismatchErr totalMismatchError
			if errors.As(err, &mismatchErr) {
				respondWithError(c, http.StatusBadRequest, route, mismatchErr.Error())
				return
			}
			log.Println("[ORDER] [ERROR] transaction failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Order creation failed")
			return
		}

		order.ID = orderID

		pub.Publish(events.ExchangeOrderPlaced, events.OrderPlacedEvent{
			OrderID:    order.ID.Hex(),
			UserID:     userID.Hex(),
			TotalPrice: order.TotalPrice,
			ItemCount:  len(order.OrderItems),
		})

		var buyer models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&buyer); err == nil {
			mail.SendOrderConfirmation(buyer.Email, order.ID.Hex(), order.TotalPrice)
		}

		log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

// orderView is an Order with the buyer resolved, the shape the admin order
// table renders.
type orderView struct {
	models.Order
	UserInfo *userSummary `json:"userInfo,omitempty"`
}

func buildOrderViews(orders []models.Order, users map[primitive.ObjectID]userSummary) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		view := orderView{Order: o}
		if user, ok := users[o.User]; ok {
			view.UserInfo = &user
		}
		views = append(views, view)
	}
	return views
}

// GET /api/orders (admin)
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		userIDs := make([]primitive.ObjectID, 0, len(orders))
		for _, o := range orders {
			userIDs = append(userIDs, o.User)
		}
		users, err := loadUserSummaries(ctx, db, userIDs)
		if err != nil {
			log.Println("[ORDER] [ERROR] buyer lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, buildOrderViews(orders, users))
	}
}

// GET /api/orders/:id
// Only the order's owner or an admin may read it.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		if order.User != userID && !isAdminRequest(c) {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to view this order")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// PUT /api/orders/:id/deliver (admin)
func MarkOrderDelivered(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/deliver"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		var updated models.Order
		err = db.Collection("orders").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": orderID},
				bson.M{"$set": bson.M{
					"isDelivered": true,
					"deliveredAt": now,
					"updatedAt":   now,
				}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func buildOrderFromRequest(req createOrderRequest, userID primitive.ObjectID) (models.Order, error) {
	if len(req.OrderItems) == 0 {
		return models.Order{}, errors.New("No order items")
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.Product))
		if err != nil {
			return models.Order{}, errors.New("invalid product id")
		}
		if item.Qty <= 0 {
			return models.Order{}, errors.New("qty must be greater than zero")
		}
		items = append(items, models.OrderItem{Product: productID, Qty: item.Qty})
	}

	now := time.Now()
	return models.Order{
		User:       userID,
		OrderItems: items,
		ShippingAddress: models.ShippingAddress{
			Address: strings.TrimSpace(req.ShippingAddress.Address),
			City:    strings.TrimSpace(req.ShippingAddress.City),
			Phone:   strings.TrimSpace(req.ShippingAddress.Phone),
		},
		TotalPrice: req.TotalPrice,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
