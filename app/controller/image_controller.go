package controller

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"tienda/service"
)

// ImageController serves resized catalog images
type ImageController struct {
	thumbnails *service.ThumbnailService
}

// NewImageController creates a new ImageController
func NewImageController(thumbnails *service.ThumbnailService) *ImageController {
	return &ImageController{thumbnails: thumbnails}
}

// Thumbnail handles GET /tienda/images/thumb?src=img/pack.png&size=cart
// size is "cart" (default) or "card"
func (c *ImageController) Thumbnail(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		http.Error(w, "src parameter is required", http.StatusBadRequest)
		return
	}
	size := r.URL.Query().Get("size")
	if size == "" {
		size = service.SizeCart
	}

	data, err := c.thumbnails.Thumbnail(src, size)
	if errors.Is(err, service.ErrImageNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("❌ Thumbnail %s: %v", src, err)
		http.Error(w, fmt.Sprintf("Failed to process image: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
