package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta"
)

// Target is an identity target created over HTTP. Metadata is attached to the
// *Target pointer, so two targets with the same name are still distinct.
type Target struct {
	ID        uuid.UUID
	Name      string
	Prototype *Target
	CreatedAt time.Time
}

// MetadataPrototype links the target to its prototype for one-hop lookups
func (t *Target) MetadataPrototype() reflectmeta.Target {
	if t.Prototype == nil {
		return nil
	}
	return t.Prototype
}

// CreateTargetRequest is the request body for creating a target
type CreateTargetRequest struct {
	Name        string `json:"name"`
	PrototypeID string `json:"prototype_id,omitempty"`
}

// TargetResponse is the response body for a target
type TargetResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PrototypeID string    `json:"prototype_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SetMetadataRequest is the request body for defining a metadata value
type SetMetadataRequest struct {
	Value any `json:"value"`
}

// MetadataResponse is the response body for a metadata lookup
type MetadataResponse struct {
	TargetID string `json:"target_id"`
	Property string `json:"property"`
	Key      string `json:"key"`
	Value    any    `json:"value"`
	Found    bool   `json:"found"`
}

var errTargetNotFound = errors.New("target not found")

// MetadataHandler handles HTTP requests for metadata on named targets
type MetadataHandler struct {
	store *reflectmeta.Store

	mu      sync.RWMutex
	targets map[uuid.UUID]*Target
}

// NewMetadataHandler creates a new metadata handler backed by store
func NewMetadataHandler(store *reflectmeta.Store) *MetadataHandler {
	return &MetadataHandler{
		store:   store,
		targets: make(map[uuid.UUID]*Target),
	}
}

// Routes returns the routes for targets and their metadata
func (h *MetadataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateTarget)
	r.Get("/{targetID}", h.GetTarget)

	// Single-key metadata access
	r.Put("/{targetID}/properties/{property}/metadata/{key}", h.DefineMetadata)
	r.Get("/{targetID}/properties/{property}/metadata/{key}", h.GetMetadata)

	return r
}

// CreateTarget creates a new identity target, optionally linked to a prototype
func (h *MetadataHandler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	var req CreateTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	target := &Target{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if req.PrototypeID != "" {
		proto, err := h.lookupTarget(req.PrototypeID)
		if err != nil {
			slog.Error("Invalid prototype", "prototype_id", req.PrototypeID, "error", err)
			http.Error(w, "Invalid prototype ID", http.StatusBadRequest)
			return
		}
		target.Prototype = proto
	}

	h.mu.Lock()
	h.targets[target.ID] = target
	h.mu.Unlock()

	slog.Info("Target created", "target_id", target.ID, "name", target.Name)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toTargetResponse(target))
}

// GetTarget describes a target
func (h *MetadataHandler) GetTarget(w http.ResponseWriter, r *http.Request) {
	target, ok := h.targetFromPath(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, toTargetResponse(target))
}

// DefineMetadata stores a value for one (target, property, key) triple
func (h *MetadataHandler) DefineMetadata(w http.ResponseWriter, r *http.Request) {
	target, ok := h.targetFromPath(w, r)
	if !ok {
		return
	}

	var req SetMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	property := chi.URLParam(r, "property")
	key := chi.URLParam(r, "key")

	if err := h.store.DefineMetadata(key, req.Value, target, property); err != nil {
		slog.Error("Failed to define metadata", "target_id", target.ID, "property", property, "key", key, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, reflectmeta.ErrHookRejected) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, "Failed to define metadata", status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMetadata reads the value of one (target, property, key) triple, falling back
// to the target's prototype
func (h *MetadataHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	target, ok := h.targetFromPath(w, r)
	if !ok {
		return
	}

	property := chi.URLParam(r, "property")
	key := chi.URLParam(r, "key")

	value, found := h.store.GetMetadata(key, target, property)
	resp := MetadataResponse{
		TargetID: target.ID.String(),
		Property: property,
		Key:      key,
		Value:    value,
		Found:    found,
	}
	if !found {
		render.Status(r, http.StatusNotFound)
	}
	render.JSON(w, r, resp)
}

func (h *MetadataHandler) targetFromPath(w http.ResponseWriter, r *http.Request) (*Target, bool) {
	rawID := chi.URLParam(r, "targetID")
	target, err := h.lookupTarget(rawID)
	if err != nil {
		if errors.Is(err, errTargetNotFound) {
			http.Error(w, "Target not found", http.StatusNotFound)
			return nil, false
		}
		slog.Error("Invalid target ID", "target_id", rawID, "error", err)
		http.Error(w, "Invalid target ID", http.StatusBadRequest)
		return nil, false
	}
	return target, true
}

func (h *MetadataHandler) lookupTarget(rawID string) (*Target, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	target, ok := h.targets[id]
	if !ok {
		return nil, errTargetNotFound
	}
	return target, nil
}

func toTargetResponse(target *Target) TargetResponse {
	resp := TargetResponse{
		ID:        target.ID.String(),
		Name:      target.Name,
		CreatedAt: target.CreatedAt,
	}
	if target.Prototype != nil {
		resp.PrototypeID = target.Prototype.ID.String()
	}
	return resp
}
