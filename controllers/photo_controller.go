package controllers

import (
	"encoding/json"
	"net/http"

	"munchmate_server/services"
)

// PhotoController hands out presigned URLs for the photo mirror bucket
type PhotoController struct {
	Photos *services.PhotoService
}

// NewPhotoController creates a new PhotoController instance
func NewPhotoController(photos *services.PhotoService) *PhotoController {
	return &PhotoController{Photos: photos}
}

// HandleGetUploadURL returns a presigned PUT URL for mirroring a photo
func (pc *PhotoController) HandleGetUploadURL(w http.ResponseWriter, r *http.Request) {
	restaurantID := r.URL.Query().Get("restaurantId")
	fileType := r.URL.Query().Get("fileType")
	if restaurantID == "" || fileType == "" {
		http.Error(w, "restaurantId and fileType are required", http.StatusBadRequest)
		return
	}

	uploadURL, key, err := pc.Photos.GenerateUploadURL(restaurantID, fileType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"uploadUrl": uploadURL, "key": key})
}

// HandleGetReadURL returns a presigned GET URL for a mirrored photo
func (pc *PhotoController) HandleGetReadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	readURL, err := pc.Photos.GenerateReadURL(key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"readUrl": readURL})
}
