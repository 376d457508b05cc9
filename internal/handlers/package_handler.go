package handlers

import (
	"encoding/json"
	"net/http"

	"classifiedsBack/internal/models"
	"classifiedsBack/internal/services"
)

type PackageHandler struct {
	Service *services.PackageService
}

func NewPackageHandler(s *services.PackageService) *PackageHandler {
	return &PackageHandler{Service: s}
}

// ListPackages returns active packages. Admins may pass ?all=true to include
// inactive ones.
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	_, role, _ := currentUser(r)
	activeOnly := !(role == models.RoleAdmin && r.URL.Query().Get("all") == "true")

	packages, err := h.Service.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to list packages", err)
		return
	}
	writeJSON(w, http.StatusOK, packages)
}

func (h *PackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid package id", err)
		return
	}
	pkg, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to get package", err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *PackageHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var pkg models.Package
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	created, err := h.Service.Create(r.Context(), pkg)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to create package", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PackageHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid package id", err)
		return
	}
	var pkg models.Package
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pkg.ID = id

	updated, err := h.Service.Update(r.Context(), pkg)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to update package", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PackageHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid package id", err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, errorStatus(err), "Failed to delete package", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
