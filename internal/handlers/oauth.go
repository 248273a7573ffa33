package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"petcare/internal/httpclient"
	"petcare/internal/models"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	oauthStateCookie = "oauth_state"
)

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type googleUserinfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GET /auth/google
func GoogleRedirect(cfg GoogleOAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/google"

		state, err := randomState()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}
		c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)

		query := url.Values{}
		query.Set("client_id", cfg.ClientID)
		query.Set("redirect_uri", cfg.RedirectURL)
		query.Set("response_type", "code")
		query.Set("scope", "openid email profile")
		query.Set("state", state)

		c.Redirect(http.StatusFound, googleAuthURL+"?"+query.Encode())
	}
}

// GET /auth/google/callback
// Exchanges the code, looks up or creates the account by Google id and
// redirects back to the frontend with a bearer token in the query string.
func GoogleCallback(db *mongo.Database, client *httpclient.Client, cfg GoogleOAuthConfig, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/google/callback"
		defer handlePanic(c, route)

		state := c.Query("state")
		cookie, err := c.Cookie(oauthStateCookie)
		if err != nil || state == "" || state != cookie {
			respondWithError(c, http.StatusUnauthorized, route, "invalid oauth state")
			return
		}
		c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

		code := strings.TrimSpace(c.Query("code"))
		if code == "" {
			respondWithError(c, http.StatusBadRequest, route, "missing code")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		form := url.Values{}
		form.Set("code", code)
		form.Set("client_id", cfg.ClientID)
		form.Set("client_secret", cfg.ClientSecret)
		form.Set("redirect_uri", cfg.RedirectURL)
		form.Set("grant_type", "authorization_code")

		var tokenResp googleTokenResponse
		if err := client.PostForm(ctx, googleTokenURL, form, &tokenResp); err != nil {
			log.Println("[OAUTH] [ERROR] code exchange failed:", err)
			respondWithError(c, http.StatusUnauthorized, route, "google sign-in failed")
			return
		}

		var info googleUserinfo
		if err := client.GetJSON(ctx, googleUserinfoURL, tokenResp.AccessToken, &info); err != nil {
			log.Println("[OAUTH] [ERROR] userinfo fetch failed:", err)
			respondWithError(c, http.StatusUnauthorized, route, "google sign-in failed")
			return
		}
		if info.ID == "" || info.Email == "" {
			respondWithError(c, http.StatusUnauthorized, route, "google sign-in failed")
			return
		}

		user, err := findOrCreateGoogleUser(ctx, db, info)
		if err != nil {
			log.Println("[OAUTH] [ERROR] user lookup-or-create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		token, err := IssueToken(user.ID, user.Name, user.IsAdmin, jwtSecret, tokenTTL)
		if err != nil {
			log.Println("[OAUTH] [ERROR] token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		log.Println("[OAUTH] [INFO] google sign-in:", user.Email)
		c.Redirect(http.StatusFound, cfg.FrontendURL+"/login-success?token="+url.QueryEscape(token))
	}
}

func findOrCreateGoogleUser(ctx context.Context, db *mongo.Database, info googleUserinfo) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	users := db.Collection("users")

	var user models.User
	err := users.FindOne(ctx, bson.M{"googleId": info.ID}).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// An existing local account with the same email gets the Google identity
	// linked instead of a second account.
	err = users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == nil {
		_, err = users.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"googleId":  info.ID,
			"updatedAt": time.Now(),
		}})
		if err != nil {
			return nil, err
		}
		user.GoogleID = info.ID
		return &user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	user = models.User{
		Name:      strings.TrimSpace(info.Name),
		Email:     email,
		GoogleID:  info.ID,
		IsAdmin:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := users.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return &user, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
