package handler

import (
	"net/http"

	"github.com/Xaroyw/ArtCore/pkg/apperr"
)

type MediaHandler struct {
	media    MediaAPI
	profiles ProfileAPI
}

func NewMediaHandler(media MediaAPI, profiles ProfileAPI) *MediaHandler {
	return &MediaHandler{media: media, profiles: profiles}
}

func (h *MediaHandler) UploadPost(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.profiles.GetProfile(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	data, ok := readUploadedFile(w, r, "image")
	if !ok {
		return
	}

	result, err := h.media.UploadPost(r.Context(), data, accountID, account.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *MediaHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
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

	account, err := h.profiles.GetProfile(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	remaining, err := h.media.DeletePost(r.Context(), imageURL, accountID, account.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"remaining": remaining})
}

// Reconcile sweeps orphaned global blobs left behind by failed upload
// sequences.
func (h *MediaHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if _, err := accountIDFrom(r); err != nil {
		writeError(w, err)
		return
	}

	removed, err := h.media.ReconcileOrphans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"removed": removed})
}
