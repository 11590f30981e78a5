package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/mposter-be/internal/http/respond"
	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/models/dto"
	"github.com/hongminglow/mposter-be/internal/storage"
	"github.com/hongminglow/mposter-be/internal/validation"
)

const (
	msgBannerNotFound  = "banner not found"
	msgNoBannersOfUser = "no banners found for this user"
)

// BannerHandler serves user banners.
type BannerHandler struct {
	store storage.BannerStore
}

func NewBannerHandler(store storage.BannerStore) *BannerHandler {
	return &BannerHandler{store: store}
}

func (h *BannerHandler) Register(r chi.Router) {
	r.Route("/userBanners", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/user/{userId}", h.handleListByUser)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
	})
}

func (h *BannerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBannerRequest
	if err := respond.Decode(r, &req); err != nil {
		badJSON(w)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.store.CreateBanner(r.Context(), models.Banner{
		BannerCode:  req.BannerCode,
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.BannerResponse{Message: "Banner created successfully", Banner: created})
}

func (h *BannerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	banners, err := h.store.ListBanners(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, banners)
}

func (h *BannerHandler) handleListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "userId must be a number")
		return
	}
	banners, err := h.store.ListBannersByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(banners) == 0 {
		respond.Error(w, http.StatusNotFound, msgNoBannersOfUser)
		return
	}
	respond.JSON(w, http.StatusOK, banners)
}

func (h *BannerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	banner, err := h.store.FindBanner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, banner)
}

func (h *BannerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.BannerPatch
	if err := respond.Decode(r, &patch); err != nil {
		badJSON(w)
		return
	}
	if err := validateText(
		textRule{"title", patch.Title, "max=150"},
		textRule{"description", patch.Description, "max=400"},
	); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.store.UpdateBanner(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.BannerResponse{Message: "Banner updated successfully", Banner: updated})
}

func (h *BannerHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, msgBannerNotFound)
		return
	}
	writeError(w, r, err)
}
