package summarize

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/blogivea-go/auth"
)

// Summarizer produces a summary of a text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	Text string `json:"text" example:"A long article body..."`
}

// SummarizeResponse carries the generated summary, empty when the model gave none.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// Handlers provides the HTTP handler for summaries.
type Handlers struct {
	summarizer Summarizer
}

// NewHandlers creates new Handlers around s.
func NewHandlers(s Summarizer) *Handlers {
	return &Handlers{summarizer: s}
}

// RegisterRoutes mounts POST / on r.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleSummarize())
}

// HandleSummarize godoc
// @Summary Summarize text
// @Description Forwards the text to the inference model. Upstream error statuses are passed through.
// @Tags summarize
// @Accept json
// @Produce json
// @Param body body SummarizeRequest true "Text to summarize"
// @Success 200 {object} SummarizeResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 502 {object} apperror.ErrorResponse
// @Router /summarize [post]
func (h *Handlers) HandleSummarize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SummarizeRequest
		if err := auth.DecodeJSON(w, r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		summary, err := h.summarizer.Summarize(r.Context(), req.Text)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, SummarizeResponse{Summary: summary})
	}
}
