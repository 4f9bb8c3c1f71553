// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, RequestsPerSecond: 1000})
}

func TestClient_ListChatbots(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chatbots" {
			t.Errorf("path = %s, want /chatbots", r.URL.Path)
		}
		if got := r.URL.Query().Get("company"); got != "Acme" {
			t.Errorf("company = %q, want Acme", got)
		}
		json.NewEncoder(w).Encode([]ChatbotInfo{
			{Name: "Helper", Company: "Acme", Team: "Eng", Part: "Backend", CreatedAt: 1000, LastTrainedAt: 2000},
		})
	}))

	bots, err := client.ListChatbots(context.Background(), Scope{Company: "Acme", Team: "Eng", Part: "Backend"})
	if err != nil {
		t.Fatalf("ListChatbots failed: %v", err)
	}
	if len(bots) != 1 || bots[0].Name != "Helper" {
		t.Errorf("bots = %+v", bots)
	}
}

func TestClient_ListChatbotsUnreachable(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{
		BaseURL:           "http://127.0.0.1:1", // nothing listens here
		RequestsPerSecond: 1000,
	})

	_, err := client.ListChatbots(context.Background(), Scope{Company: "A", Team: "B", Part: "C"})
	if !IsUnreachable(err) {
		t.Errorf("got %v, want unreachable error", err)
	}
}

func TestClient_DeleteChatbotNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "no such chatbot"})
	}))

	err := client.DeleteChatbot(context.Background(), Scope{Company: "A", Team: "B", Part: "C"}, "Ghost")
	if !IsNotFound(err) {
		t.Errorf("got %v, want not-found error", err)
	}
	if err.Error() != "no such chatbot" {
		t.Errorf("detail not surfaced: %q", err.Error())
	}
}

func TestClient_AddCompanyPostsJSON(t *testing.T) {
	var body map[string]string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/company" {
			t.Errorf("%s %s, want POST /company", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.AddCompany(context.Background(), "Acme"); err != nil {
		t.Fatalf("AddCompany failed: %v", err)
	}
	if body["company"] != "Acme" {
		t.Errorf("body = %v", body)
	}
}

func TestClient_Chat(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Question != "what is the onboarding deadline?" {
			t.Errorf("question = %q", req.Question)
		}
		if req.ChatHistory == nil {
			t.Error("chat_history must be present, not null")
		}
		json.NewEncoder(w).Encode(ChatAnswer{
			Answer:  "Two weeks after start.",
			Sources: []Source{{Page: 3}},
		})
	}))

	ans, err := client.Chat(context.Background(), Scope{Company: "A", Team: "B", Part: "C"}, "Helper",
		"what is the onboarding deadline?", nil)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if ans.Answer == "" || len(ans.Sources) != 1 || ans.Sources[0].Page != 3 {
		t.Errorf("answer = %+v", ans)
	}
}

func TestClient_UploadPDF(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "manual.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0644); err != nil {
		t.Fatalf("write fake pdf: %v", err)
	}

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		if got := r.FormValue("chatbot_name"); got != "Helper" {
			t.Errorf("chatbot_name = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file field missing: %v", err)
		}
		f.Close()
		if hdr.Filename != "manual.pdf" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		json.NewEncoder(w).Encode(UploadResult{Message: "ok", FaissIndexDir: "/data/x"})
	}))

	res, err := client.UploadPDF(context.Background(), Scope{Company: "A", Team: "B", Part: "C"}, "Helper", pdfPath)
	if err != nil {
		t.Fatalf("UploadPDF failed: %v", err)
	}
	if res.FaissIndexDir != "/data/x" {
		t.Errorf("result = %+v", res)
	}
}

func TestClient_GenerateQuiz(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/qna" {
			t.Errorf("path = %s, want /api/qna", r.URL.Path)
		}
		if got := r.URL.Query().Get("force"); got != "true" {
			t.Errorf("force = %q, want true", got)
		}
		json.NewEncoder(w).Encode(QuizResponse{Questions: []QuizQuestion{
			{ID: "q1", Question: "?", Choices: []string{"a", "b"}, AnswerIndex: 1},
		}})
	}))

	quiz, err := client.GenerateQuiz(context.Background(), Scope{Company: "A", Team: "B", Part: "C"}, "Helper", true)
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].AnswerIndex != 1 {
		t.Errorf("quiz = %+v", quiz)
	}
}

func TestClient_EndpointsShareOneBase(t *testing.T) {
	// Chat lives at the service root while quiz sits under /api; both
	// must be reachable from the same configured base URL.
	var paths []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{})
	}))

	scope := Scope{Company: "A", Team: "B", Part: "C"}
	ctx := context.Background()
	if _, err := client.Chat(ctx, scope, "Helper", "hi", nil); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if _, err := client.GenerateQuiz(ctx, scope, "Helper", false); err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}

	want := []string{"/chat", "/api/qna"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestClient_DefaultsFilled(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	if c.config.BaseURL == "" || c.config.Timeout == 0 || c.config.UploadTimeout == 0 {
		t.Errorf("zero-value config not defaulted: %+v", c.config)
	}
}
