package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"petcare/internal/httpclient"
)

func performChat(t *testing.T, upstreamURL, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	Chat(httpclient.New(2*time.Second), upstreamURL)(c)
	return w
}

func TestChatPassesReplyThrough(t *testing.T) {
	var received map[string]json.RawMessage
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("upstream could not decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply": "Feed twice a day."}`))
	}))
	defer upstream.Close()

	w := performChat(t, upstream.URL, `{"message": "How often to feed a puppy?", "history": [{"role": "user"}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if resp["reply"] != "Feed twice a day." {
		t.Fatalf("unexpected reply: %q", resp["reply"])
	}
	if string(received["history"]) != `[{"role": "user"}]` {
		t.Fatalf("history not forwarded verbatim: %s", received["history"])
	}
}

func TestChatRequiresMessage(t *testing.T) {
	w := performChat(t, "http://127.0.0.1:0", `{"history": []}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChatUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	w := performChat(t, upstream.URL, `{"message": "hello"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if resp["message"] != "Chatbot brain is not responding." {
		t.Fatalf("unexpected message: %q", resp["message"])
	}
}
