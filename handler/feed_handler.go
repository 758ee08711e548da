package handler

import (
	"net/http"
)

type FeedHandler struct {
	feed     FeedAPI
	profiles ProfileAPI
}

func NewFeedHandler(feed FeedAPI, profiles ProfileAPI) *FeedHandler {
	return &FeedHandler{feed: feed, profiles: profiles}
}

// ListFeed returns everyone else's posts in randomized order. The
// caller's current nickname is looked up fresh so a recent rename
// still excludes their own posts.
func (h *FeedHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
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

	posts, err := h.feed.ListFeed(r.Context(), account.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *FeedHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.feed.CountAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
