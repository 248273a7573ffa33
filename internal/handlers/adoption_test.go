package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"petcare/internal/models"
)

// UpdateAdoptionStatus validates the id and the status enum before touching
// the store, so these paths run without a database.
func updateStatusRequest(t *testing.T, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: id}}
	c.Request = httptest.NewRequest("PUT", "/api/adoption/"+id, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	UpdateAdoptionStatus(nil, nil, nil)(c)
	return w
}

func TestUpdateAdoptionStatusRejectsMalformedID(t *testing.T) {
	w := updateStatusRequest(t, "not-hex", `{"status":"Approved"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", w.Code)
	}
}

func TestUpdateAdoptionStatusRejectsUnknownStatus(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	for _, status := range []string{"approved", "Cancelled", "PENDING", "weird"} {
		w := updateStatusRequest(t, id, `{"status":"`+status+`"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status %q: expected 400, got %d", status, w.Code)
		}
	}
}

func TestUpdateAdoptionStatusRequiresStatusField(t *testing.T) {
	w := updateStatusRequest(t, primitive.NewObjectID().Hex(), `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %d", w.Code)
	}
}

func TestPendingRequestFilterPinsOpenStatus(t *testing.T) {
	id := primitive.NewObjectID()
	filter := pendingRequestFilter(id)

	if filter["_id"] != id {
		t.Fatalf("expected _id %v, got %v", id, filter["_id"])
	}
	// The status precondition is what keeps a second concurrent decision
	// from rewriting an already-decided request.
	if filter["status"] != models.RequestStatusPending {
		t.Fatalf("expected filter pinned to %q, got %v", models.RequestStatusPending, filter["status"])
	}
	if len(filter) != 2 {
		t.Fatalf("unexpected extra filter fields: %v", filter)
	}
}

func TestRequestStatusEnum(t *testing.T) {
	for _, status := range []string{
		models.RequestStatusPending,
		models.RequestStatusApproved,
		models.RequestStatusRejected,
	} {
		if !models.ValidRequestStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}

	if models.ValidRequestStatus("Open") {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestTerminalRequestStatus(t *testing.T) {
	if models.TerminalRequestStatus(models.RequestStatusPending) {
		t.Fatal("Pending must not be terminal")
	}
	if !models.TerminalRequestStatus(models.RequestStatusApproved) {
		t.Fatal("Approved must be terminal")
	}
	if !models.TerminalRequestStatus(models.RequestStatusRejected) {
		t.Fatal("Rejected must be terminal")
	}
}
