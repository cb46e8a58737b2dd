// internal/api/chat.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/validation"
	composeanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/compose-answer"
)

const (
	maxBodyBytes = 64 << 10

	errQuestionRequired = "Question is required"
	errQuestionTooLong  = "Question is too long"
)

type ChatRequest struct {
	Question string  `json:"question"`
	Mode     *string `json:"mode,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errors.WriteJSON(w, apperrors.NewInvalidRequestError("request body too large or unreadable"))
		return
	}

	req, err := decodeChatRequest(body)
	if err != nil {
		s.errors.WriteJSON(w, err)
		return
	}

	input := &composeanswer.Input{
		Question:  req.Question,
		RequestID: w.Header().Get(requestIDHeader),
	}
	if req.Mode != nil {
		input.Mode = *req.Mode
	}

	out, err := s.answerer.Execute(r.Context(), input)
	if err != nil {
		s.errors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.ComposedAnswer)
}

// decodeChatRequest validates body against the chat request schema. A
// missing, blank or non-string question is reported as "Question is
// required"; one over the schema's maxLength as "Question is too long".
func decodeChatRequest(body []byte) (*ChatRequest, error) {
	res, err := validation.ValidateJSON(validation.ChatRequest, body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !res.Valid {
		for _, e := range res.Errors {
			if e.Field == "question" && e.Code == "string_lte" {
				return nil, apperrors.NewInvalidRequestError(errQuestionTooLong)
			}
		}
		for _, e := range res.Errors {
			if e.Field == "question" || e.Code == "required" || e.Code == "MALFORMED_JSON" {
				return nil, apperrors.NewInvalidRequestError(errQuestionRequired)
			}
		}
		return nil, apperrors.NewInvalidRequestError(res.Summary())
	}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperrors.NewInvalidRequestError(errQuestionRequired)
	}
	return &req, nil
}
