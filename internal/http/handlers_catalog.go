package http

import (
	"net/http"

	"spesa/internal/analytics"
	"spesa/internal/core"
	"spesa/internal/services"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	vendors := s.ledger.Ledger().Vendors
	if vendors == nil {
		vendors = []core.Vendor{}
	}
	writeJSON(w, http.StatusOK, vendors)
}

func (s *Server) handleAddVendor(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.ledger.AddVendor(sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleUpdateVendor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.UpdateVendor(id, sanitizeInput(req.Name)); err != nil {
		writeError(w, r, err)
		return
	}
	l := s.ledger.Ledger()
	i := l.VendorIndex(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "vendor not found"})
		return
	}
	writeJSON(w, http.StatusOK, l.Vendors[i])
}

func (s *Server) handleDeleteVendor(w http.ResponseWriter, r *http.Request) {
	s.ledger.DeleteVendor(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type categoriesResponse struct {
	Categories []string          `json:"categories"`
	VendorMap  map[string]string `json:"vendorMap"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	l := s.ledger.Ledger()
	vendorMap := l.CategoryVendorMap
	if vendorMap == nil {
		vendorMap = map[string]string{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: analytics.AllCategories(l),
		VendorMap:  vendorMap,
	})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.AddCustomCategory(sanitizeInput(req.Name)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoriesResponse{
		Categories: analytics.AllCategories(s.ledger.Ledger()),
	})
}

type categoryVendorRequest struct {
	VendorID string `json:"vendorId"`
}

// handleCategoryVendor sets or, with an empty vendorId, clears the preferred
// vendor of a category.
func (s *Server) handleCategoryVendor(w http.ResponseWriter, r *http.Request) {
	category := sanitizeInput(r.PathValue("name"))
	var req categoryVendorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.VendorID != "" && s.ledger.Ledger().VendorIndex(req.VendorID) < 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "vendor not found"})
		return
	}
	s.ledger.UpdateCategoryVendorMap(category, req.VendorID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMasterItems(w http.ResponseWriter, r *http.Request) {
	items := analytics.AllKnownItems(s.ledger.Ledger())
	if items == nil {
		items = []core.MasterItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleItemNames(w http.ResponseWriter, r *http.Request) {
	names := analytics.KnownItemNames(s.ledger.Ledger())
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// handleLatestPurchase looks up ?name=&unit=.
func (s *Server) handleLatestPurchase(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, err := requiredQuery(q, "name")
	if err != nil {
		writeError(w, r, err)
		return
	}
	unit := sanitizeInput(q.Get("unit"))
	writeJSON(w, http.StatusOK, analytics.LatestPurchaseInfo(s.ledger.Ledger(), name, unit))
}

type masterItemRequest struct {
	OriginalName string `json:"originalName"`
	OriginalUnit string `json:"originalUnit"`
	services.MasterItemUpdate
}

func (s *Server) handleUpdateMasterItem(w http.ResponseWriter, r *http.Request) {
	var req masterItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.OriginalName == "" {
		writeError(w, r, core.ErrEmptyName)
		return
	}
	upd := services.MasterItemUpdate{
		Name:     sanitizeInput(req.Name),
		Unit:     sanitizeInput(req.Unit),
		Category: sanitizeInput(req.Category),
	}
	if err := s.ledger.UpdateMasterItem(req.OriginalName, req.OriginalUnit, upd); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
