package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"optionsjournal/internal/domain"
)

const maxImageUpload = 16 << 20 // 16 MiB

// UploadImage handles POST /trades/{id}/image. The multipart field "image"
// is stored under the upload dir with a name derived from the trade, and
// the served URL is appended to the trade's image list.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	trade, err := h.service.FindTrade(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if trade == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Trade not found"})
		return
	}

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.respondError(w, r, err)
		return
	}

	filename := imageFilename(trade, filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(h.uploadDir, filename))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		h.respondError(w, r, err)
		return
	}

	url := "/uploads/" + filename
	images := append(append([]string{}, trade.Images...), url)
	updated, err := h.service.UpdateTrade(r.Context(), id, &domain.TradePatch{Images: &images})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"url": url, "trade": updated})
}

// DeleteImage handles DELETE /trades/{id}/image with body {"url": ...}:
// removes the URL from the trade and the file from disk.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil || req.URL == "" {
		http.Error(w, "missing image url", http.StatusBadRequest)
		return
	}

	trade, err := h.service.FindTrade(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if trade == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Trade not found"})
		return
	}

	images := make([]string, 0, len(trade.Images))
	found := false
	for _, u := range trade.Images {
		if u == req.URL {
			found = true
			continue
		}
		images = append(images, u)
	}
	if !found {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Image not found"})
		return
	}

	if _, err := h.service.UpdateTrade(r.Context(), id, &domain.TradePatch{Images: &images}); err != nil {
		h.respondError(w, r, err)
		return
	}
	// Best effort: the journal entry is authoritative, a stale file is not.
	_ = os.Remove(filepath.Join(h.uploadDir, path.Base(req.URL)))

	respondJSON(w, http.StatusOK, map[string]string{"message": "Image deleted", "url": req.URL})
}

// imageFilename builds the deterministic name
// date_time_ticker_strike_entry_type_uploadstamp.ext from the trade fields.
func imageFilename(t *domain.Trade, ext string) string {
	entry := t.EntryTime
	optionTag := "P"
	if t.OptionType == domain.Call {
		optionTag = "C"
	}
	entryPrice := strings.ReplaceAll(fmt.Sprintf("%g", t.AverageEntry), ".", "-")
	return fmt.Sprintf("%s_%s_%s_%g_%s_%s_%s%s",
		entry.Format("2006-01-02"),
		entry.Format("0304PM"),
		t.Ticker,
		t.StrikePrice,
		entryPrice,
		optionTag,
		time.Now().Format("20060102150405"),
		ext,
	)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}
