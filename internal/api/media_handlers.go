package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	mediaStoragePath string
	once             sync.Once
)

// initStoragePath resolves the absolute path of the media_storage folder,
// next to the executable, and creates it if missing.
func initStoragePath() {
	once.Do(func() {
		executable, err := os.Executable()
		if err != nil {
			log.Fatalf("FATAL: Cannot get executable path: %v", err)
		}
		mediaStoragePath = filepath.Join(filepath.Dir(executable), "media_storage")

		if err := os.MkdirAll(mediaStoragePath, os.ModePerm); err != nil {
			log.Fatalf("FATAL: Cannot create media storage directory at %s: %v", mediaStoragePath, err)
		}
		log.Printf("Media storage initialized at: %s", mediaStoragePath)
	})
}

// UploadMedia stores one product image under a generated filename and
// returns the durable URL the catalog can reference.
func (s *server) UploadMedia(w http.ResponseWriter, r *http.Request) {
	initStoragePath()

	if err := r.ParseMultipartForm(16 << 20); err != nil { // 16 MB
		writeJSONError(w, http.StatusBadRequest, "Failed to parse multipart form: "+err.Error())
		return
	}

	file, handler, err := r.FormFile("media")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Failed to get media file from form: "+err.Error())
		return
	}
	defer file.Close()

	contentType := handler.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSONError(w, http.StatusBadRequest, "Only image uploads are accepted")
		return
	}

	ext := filepath.Ext(handler.Filename)
	uniqueFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	destPath := filepath.Join(mediaStoragePath, uniqueFilename)

	destFile, err := os.Create(destPath)
	if err != nil {
		log.Printf("UploadMedia: failed to create destination file at %s: %v", destPath, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not save file")
		return
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, file); err != nil {
		log.Printf("UploadMedia: failed to copy file content to %s: %v", destPath, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not save file content")
		return
	}

	writeJSONSuccess(w, "File uploaded", map[string]string{
		"filename": uniqueFilename,
		"url":      "/api/media/" + uniqueFilename,
	})
}

// MediaProxy serves a stored media file. The filename is validated so the
// request can never walk out of the storage directory.
func (s *server) MediaProxy(w http.ResponseWriter, r *http.Request) {
	initStoragePath()

	filename := chi.URLParam(r, "filename")
	if filename == "" || strings.Contains(filename, "..") ||
		strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		writeJSONError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	filePath := filepath.Join(mediaStoragePath, filename)
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSONError(w, http.StatusNotFound, "File not found")
		} else {
			log.Printf("MediaProxy: error checking %s: %v", filePath, err)
			writeJSONError(w, http.StatusInternalServerError, "Could not read file")
		}
		return
	}
	if fileInfo.IsDir() {
		writeJSONError(w, http.StatusBadRequest, "Not a file")
		return
	}

	w.Header().Set("Content-Type", getContentType(filepath.Ext(filename)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Expires", time.Now().Add(24*time.Hour).Format(http.TimeFormat))
	http.ServeFile(w, r, filePath)
}

// getContentType maps a file extension to its MIME type.
func getContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
