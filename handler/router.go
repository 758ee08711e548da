package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Xaroyw/ArtCore/pkg/jwt"
)

// NewRouter wires every endpoint. blobRoot, when non-empty, is served
// under /blobs/ so issued download URLs resolve.
func NewRouter(
	jwtManager *jwt.Manager,
	auth *AuthHandler,
	profile *ProfileHandler,
	feed *FeedHandler,
	like *LikeHandler,
	media *MediaHandler,
	blobRoot string,
) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	r.HandleFunc("/auth/register", auth.Register).Methods("POST")
	r.HandleFunc("/auth/login", auth.Login).Methods("POST")
	r.HandleFunc("/auth/refresh", auth.Refresh).Methods("POST")
	r.HandleFunc("/auth/logout", auth.Logout).Methods("POST")

	authed := r.NewRoute().Subrouter()
	authed.Use(AuthMiddleware(jwtManager))

	authed.HandleFunc("/auth/reauthenticate", auth.Reauthenticate).Methods("POST")
	authed.HandleFunc("/auth/password", auth.ChangePassword).Methods("POST")

	authed.HandleFunc("/profile", profile.GetProfile).Methods("GET")
	authed.HandleFunc("/profile/nickname", profile.UpdateNickname).Methods("PUT")
	authed.HandleFunc("/profile/avatar", profile.UploadAvatar).Methods("POST")
	authed.HandleFunc("/profile/subscribe", profile.Subscribe).Methods("GET")

	authed.HandleFunc("/feed", feed.ListFeed).Methods("GET")
	authed.HandleFunc("/feed/count", feed.Count).Methods("GET")

	authed.HandleFunc("/likes", like.List).Methods("GET")
	authed.HandleFunc("/likes/status", like.Status).Methods("GET")
	authed.HandleFunc("/likes", like.Like).Methods("POST")
	authed.HandleFunc("/likes", like.Unlike).Methods("DELETE")

	authed.HandleFunc("/images", media.UploadPost).Methods("POST")
	authed.HandleFunc("/images", media.DeletePost).Methods("DELETE")
	authed.HandleFunc("/maintenance/reconcile", media.Reconcile).Methods("POST")

	if blobRoot != "" {
		r.PathPrefix("/blobs/").Handler(
			http.StripPrefix("/blobs/", http.FileServer(http.Dir(blobRoot))),
		).Methods("GET")
	}

	return r
}
