package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes.
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	r.HandleFunc("/trades", handler.GetAllTrades).Methods("GET")
	r.HandleFunc("/trades", handler.CreateTrade).Methods("POST")
	r.HandleFunc("/trades/filtered", handler.FilteredTrades).Methods("POST")
	r.HandleFunc("/trades/summary", handler.Summary).Methods("POST")
	r.HandleFunc("/trades/{id}", handler.UpdateTrade).Methods("PUT")
	r.HandleFunc("/trades/{id}", handler.DeleteTrade).Methods("DELETE")
	r.HandleFunc("/trades/{id}/highs", handler.RecordHigh).Methods("POST")
	r.HandleFunc("/trades/{id}/image", handler.UploadImage).Methods("POST")
	r.HandleFunc("/trades/{id}/image", handler.DeleteImage).Methods("DELETE")

	// Stored images are served straight from the upload directory.
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(handler.uploadDir))))

	return r
}
