package handler

import (
	"net/http"

	"github.com/Xaroyw/ArtCore/pkg/apperr"
)

type LikeHandler struct {
	likes LikeAPI
}

func NewLikeHandler(likes LikeAPI) *LikeHandler {
	return &LikeHandler{likes: likes}
}

func (h *LikeHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	urls, err := h.likes.ListLiked(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"liked": urls})
}

func (h *LikeHandler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	imageURL := r.URL.Query().Get("image_url")
	if imageURL == "" {
		writeError(w, apperr.New(apperr.KindValidation, "image_url is required"))
		return
	}

	liked, err := h.likes.IsLiked(r.Context(), accountID, imageURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		ImageURL string `json:"image_url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.likes.Like(r.Context(), accountID, req.ImageURL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	imageURL := r.URL.Query().Get("image_url")
	if imageURL == "" {
		writeError(w, apperr.New(apperr.KindValidation, "image_url is required"))
		return
	}

	if err := h.likes.Unlike(r.Context(), accountID, imageURL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
