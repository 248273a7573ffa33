package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"petcare/internal/config"
	"petcare/internal/database"
	"petcare/internal/models"
)

// Loads sample services and products for development. -destroy wipes the
// seeded collections instead.
func main() {
	destroy := flag.Bool("destroy", false, "remove seeded data instead of importing")
	adminEmail := flag.String("admin-email", "admin@petcare.local", "email of the admin account to create or reuse")
	adminPassword := flag.String("admin-password", "changeme", "password for a newly created admin account")
	flag.Parse()

	cfg := config.Load()

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			log.Println("disconnect error:", err)
		}
	}()

	db := client.Database(cfg.DBName)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *destroy {
		for _, name := range []string{"services", "products"} {
			if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
				log.Fatalf("destroy %s: %v", name, err)
			}
		}
		log.Println("seeded data destroyed")
		return
	}

	admin, err := ensureAdminUser(ctx, db, *adminEmail, *adminPassword)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("admin user:", admin.Email)

	for _, name := range []string{"services", "products"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("clear %s: %v", name, err)
		}
	}

	now := time.Now()
	services := []interface{}{
		models.Service{
			Name:    "Best Care Animal Hospital",
			Type:    models.ServiceTypeVetClinic,
			Address: "25, Galle Road, Dehiwala, Sri Lanka",
			Phone:   "0112738738",
			Location: &models.GeoPoint{
				Type:        "Point",
				Coordinates: []float64{79.8636, 6.8553},
			},
			Reviews:   []models.Review{},
			CreatedAt: now,
			UpdatedAt: now,
		},
		models.Service{
			Name:    "PetVet Clinic",
			Type:    models.ServiceTypeVetClinic,
			Address: "110, Havelock Road, Colombo 5, Sri Lanka",
			Phone:   "0112580580",
			Location: &models.GeoPoint{
				Type:        "Point",
				Coordinates: []float64{79.8614, 6.8883},
			},
			Reviews:   []models.Review{},
			CreatedAt: now,
			UpdatedAt: now,
		},
		models.Service{
			Name:    "Paws & Whiskers Grooming",
			Type:    models.ServiceTypeGroomer,
			Address: "42, Flower Road, Colombo 7, Sri Lanka",
			Phone:   "0777123456",
			Location: &models.GeoPoint{
				Type:        "Point",
				Coordinates: []float64{79.8601, 6.9142},
			},
			Reviews:   []models.Review{},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	products := []interface{}{
		models.Product{
			User:         admin.ID,
			Name:         "Royal Canin Maxi Puppy Food 1kg",
			Image:        "/images/sample.jpg",
			Brand:        "Royal Canin",
			Category:     "Food",
			Description:  "Complete feed for dogs - For large breed puppies.",
			Price:        4500,
			CountInStock: 25,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		models.Product{
			User:         admin.ID,
			Name:         "Catnip Mouse Toy",
			Image:        "/images/sample.jpg",
			Brand:        "CatComfort",
			Category:     "Toys",
			Description:  "A fun and engaging mouse toy with premium catnip.",
			Price:        850,
			CountInStock: 50,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	if _, err := db.Collection("services").InsertMany(ctx, services); err != nil {
		log.Fatal("insert services:", err)
	}
	if _, err := db.Collection("products").InsertMany(ctx, products); err != nil {
		log.Fatal("insert products:", err)
	}

	log.Println("sample data imported")
}

func ensureAdminUser(ctx context.Context, db *mongo.Database, email, password string) (*models.User, error) {
	var admin models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"isAdmin": true}).Decode(&admin)
	if err == nil {
		return &admin, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin = models.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := db.Collection("users").InsertOne(ctx, admin)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		admin.ID = id
	}
	return &admin, nil
}
