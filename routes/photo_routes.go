package routes

import (
	"munchmate_server/controllers"
	"munchmate_server/services"

	"github.com/gorilla/mux"
)

// RegisterPhotoRoutes sets up routes for presigned photo URLs under /api/photos
func RegisterPhotoRoutes(r *mux.Router, photoService *services.PhotoService) {
	controller := controllers.NewPhotoController(photoService)

	photoRouter := r.PathPrefix("/api/photos").Subrouter()

	photoRouter.HandleFunc("/upload-url", controller.HandleGetUploadURL).Methods("GET")
	photoRouter.HandleFunc("/read-url", controller.HandleGetReadURL).Methods("GET")
}
