package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxUploadSize caps service image uploads at 20 MB.
const maxUploadSize = 20 << 20

// ServiceUpload accepts a multipart image for a service, stores it in the
// bucket under {serviceId}/{epochMillis}.{ext} and writes the public URL
// back onto the service row. Re-uploading for the same key overwrites.
func (a *Admin) ServiceUpload(w http.ResponseWriter, r *http.Request) {
	if a.storageClient == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	serviceID, err := uuid.Parse(r.FormValue("serviceId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid serviceId")
		return
	}

	svc, err := a.serviceStore.FindByID(serviceID)
	if err != nil {
		slog.Error("find service failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if svc == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%s/%d.%s", serviceID, time.Now().UnixMilli(), uploadExt(header.Filename))

	ctx := r.Context()
	if err := a.storageClient.EnsureBucket(ctx); err != nil {
		slog.Error("ensure bucket failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.storageClient.Upload(ctx, key, contentType, file, header.Size); err != nil {
		slog.Error("upload failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	url := a.storageClient.FileURL(key)
	if err := a.serviceStore.SetImageURL(serviceID, url); err != nil {
		slog.Error("set image url failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Best effort: drop the replaced object so the bucket does not collect
	// every image ever uploaded for this service.
	if svc.ImageURL != nil {
		if oldKey, ok := a.storageClient.Key(*svc.ImageURL); ok && oldKey != key {
			if err := a.storageClient.Delete(ctx, oldKey); err != nil {
				slog.Warn("delete replaced image failed", "key", oldKey, "error", err)
			}
		}
	}

	slog.Info("service image uploaded", "service", serviceID, "key", key)
	writeJSON(w, http.StatusOK, map[string]any{"url": url, "path": key})
}

// uploadExt extracts a lowercased extension from the upload filename,
// falling back to "bin" when there is none.
func uploadExt(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "bin"
	}
	return strings.ToLower(ext)
}
