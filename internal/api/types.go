// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the docent backend service,
// which owns the organization directory, the chatbot registry, PDF
// ingestion/indexing, retrieval chat and quiz generation.
package api

// =============================================================================
// WIRE TYPES
// =============================================================================

// Scope identifies the (company, team, part) triple that partitions
// chatbots and tree nodes.
type Scope struct {
	Company string `json:"company"`
	Team    string `json:"team"`
	Part    string `json:"part"`
}

// ChatbotInfo is one chatbot record as returned by GET /chatbots.
type ChatbotInfo struct {
	Name          string `json:"name"`
	Company       string `json:"company"`
	Team          string `json:"team"`
	Part          string `json:"part"`
	IndexPath     string `json:"indexPath"`
	CreatedAt     int64  `json:"createdAt"`     // Unix milliseconds
	LastTrainedAt int64  `json:"lastTrainedAt"` // Unix milliseconds
	PDFURL        string `json:"pdf_url"`       // relative /static URL, may be empty
}

// LoginContext is one matching record from GET /login.
type LoginContext struct {
	Company    string `json:"company"`
	Team       string `json:"team"`
	Part       string `json:"part"`
	EmployeeID string `json:"employeeID"`
}

// UploadResult is the response of POST /upload_pdf.
type UploadResult struct {
	Message       string `json:"message"`
	PDFURL        string `json:"pdf_url"`
	FaissIndexDir string `json:"faiss_index_dir"`
}

// ChatTurn is one prior exchange passed back as chat history.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Company     string     `json:"company"`
	Team        string     `json:"team"`
	Part        string     `json:"part"`
	ChatbotName string     `json:"chatbot_name"`
	Question    string     `json:"question"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

// Source is one retrieved source page attached to an answer.
type Source struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet,omitempty"`
	File    string `json:"file,omitempty"`
}

// ChatAnswer is the response of POST /chat.
type ChatAnswer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
}

// QuizResponse is the response of the /api/qna endpoints.
type QuizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

// apiError is the backend's error body shape ({"detail": "..."}).
type apiError struct {
	Detail string `json:"detail"`
}
