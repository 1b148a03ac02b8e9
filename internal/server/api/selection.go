package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/field"
	"github.com/ayusman/mudra/internal/log"
	"github.com/ayusman/mudra/internal/shape"
)

// Selector is the part of the host that owns the shape and color choice.
type Selector interface {
	Selection() app.Selection
	SetSelection(app.Selection) error
}

// SelectionHandler serves GET and PUT /api/selection.
type SelectionHandler struct {
	selector Selector
}

// NewSelectionHandler creates a SelectionHandler backed by s.
func NewSelectionHandler(s Selector) *SelectionHandler {
	return &SelectionHandler{selector: s}
}

// Request and response types

// updateSelectionRequest leaves the current value in place for any field
// that is omitted.
type updateSelectionRequest struct {
	Shape string       `json:"shape"`
	Color *field.Color `json:"color"`
}

type selectionResponse struct {
	Shape  shape.Kind   `json:"shape"`
	Color  field.Color  `json:"color"`
	Shapes []shape.Kind `json:"shapes"`
}

func toSelectionResponse(sel app.Selection) selectionResponse {
	return selectionResponse{
		Shape:  sel.Shape,
		Color:  sel.Color,
		Shapes: shape.Kinds(),
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *SelectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSelectionResponse(h.selector.Selection()))
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles PUT /api/selection.
func (h *SelectionHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sel := h.selector.Selection()
	if req.Shape != "" {
		k, err := shape.ParseKind(req.Shape)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sel.Shape = k
	}
	if req.Color != nil {
		sel.Color = *req.Color
	}

	if err := h.selector.SetSelection(sel); err != nil {
		if errors.Is(err, shape.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("failed to apply selection", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to apply selection")
		return
	}

	writeJSON(w, http.StatusOK, toSelectionResponse(h.selector.Selection()))
}
