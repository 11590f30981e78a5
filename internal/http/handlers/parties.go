package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/mposter-be/internal/http/respond"
	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/models/dto"
	"github.com/hongminglow/mposter-be/internal/models/optional"
	"github.com/hongminglow/mposter-be/internal/storage"
	"github.com/hongminglow/mposter-be/internal/validation"
)

const (
	msgPartyNotFound = "party not found"
	msgPartyExists   = "party with this pid already exists"
)

// PartyHandler serves CRUD on the party reference list.
type PartyHandler struct {
	store storage.PartyStore
}

func NewPartyHandler(store storage.PartyStore) *PartyHandler {
	return &PartyHandler{store: store}
}

func (h *PartyHandler) Register(r chi.Router) {
	r.Route("/partyLists", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *PartyHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePartyRequest
	if err := respond.Decode(r, &req); err != nil {
		badJSON(w)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.store.CreateParty(r.Context(), models.Party{
		PID:          *req.PID,
		PartyLogoURL: req.PartyLogoURL,
		Title:        req.Title,
		Description:  req.Description,
		PartyColor:   req.PartyColor,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.PartyResponse{Message: "Party created successfully", Party: created})
}

func (h *PartyHandler) handleList(w http.ResponseWriter, r *http.Request) {
	parties, err := h.store.ListParties(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, parties)
}

func (h *PartyHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	party, err := h.store.FindParty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, party)
}

func (h *PartyHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.PartyPatch
	if err := respond.Decode(r, &patch); err != nil {
		badJSON(w)
		return
	}
	if err := validatePartyPatch(patch); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.store.UpdateParty(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.PartyResponse{Message: "Party updated successfully", Party: updated})
}

func (h *PartyHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteParty(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Message{Message: "Party deleted successfully"})
}

func (h *PartyHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, msgPartyNotFound)
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusBadRequest, msgPartyExists)
	default:
		writeError(w, r, err)
	}
}

func validatePartyPatch(p models.PartyPatch) error {
	if p.PID.Set && p.PID.Null {
		return validation.New("pid", "pid is required")
	}
	return validateText(
		textRule{"partyLogoUrl", p.PartyLogoURL, "max=2048"},
		textRule{"title", p.Title, "max=150"},
		textRule{"description", p.Description, "max=600"},
		textRule{"partyColor", p.PartyColor, "max=10"},
	)
}

type textRule struct {
	field string
	value optional.Field[string]
	tag   string
}

// validateText checks every present, non-null field against its rule.
func validateText(rules ...textRule) error {
	for _, rule := range rules {
		if !rule.value.Set || rule.value.Null {
			continue
		}
		if err := validation.Var(rule.field, rule.value.Value, rule.tag); err != nil {
			return err
		}
	}
	return nil
}
