package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

const maxUploadBytes = 10 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The mobile client sends no browser origin.
		return true
	},
}

type ProfileHandler struct {
	profiles ProfileAPI
	media    MediaAPI
}

func NewProfileHandler(profiles ProfileAPI, media MediaAPI) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, media: media}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, account)
}

func (h *ProfileHandler) UpdateNickname(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Nickname string `json:"nickname"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.profiles.UpdateNickname(r.Context(), accountID, req.Nickname); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, ok := readUploadedFile(w, r, "avatar")
	if !ok {
		return
	}

	url, err := h.media.UploadAvatar(r.Context(), data, accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// Subscribe upgrades to a websocket and streams profile snapshots. The
// store subscription is released on every exit path: client close,
// write failure, or server shutdown of the socket.
func (h *ProfileHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.profiles.Subscribe(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Unsubscribe()
		log.Printf("profile subscribe: upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func readUploadedFile(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, wrapValidation("invalid multipart form", err))
		return nil, false
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		writeError(w, wrapValidation("missing file field "+field, err))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, wrapValidation("failed to read upload", err))
		return nil, false
	}
	return data, true
}
