package http

import (
	"net/http"

	"spesa/internal/core"
	"spesa/internal/services"
)

type createListRequest struct {
	Date string `json:"date"`
}

type listResponse struct {
	ID   string            `json:"id"`
	List core.ShoppingList `json:"list"`
}

// handleCreateList opens the list for a day, today by default. Creating a
// day that already has a list returns the existing one.
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	day, err := parseDay(req.Date, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := s.ledger.CreateList(day)
	l := s.ledger.Ledger()
	resp := listResponse{ID: id}
	if i := l.ListIndex(id); i >= 0 {
		resp.List = l.Lists[i]
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.ledger.Ledger().ListIndex(id) < 0 {
		writeError(w, r, services.ErrListNotFound)
		return
	}
	var list core.ShoppingList
	if err := decodeJSON(w, r, &list); err != nil {
		writeError(w, r, err)
		return
	}
	list.Name = sanitizeInput(list.Name)
	if err := s.ledger.UpdateList(id, list); err != nil {
		writeError(w, r, err)
		return
	}
	l := s.ledger.Ledger()
	resp := listResponse{ID: id}
	if i := l.ListIndex(id); i >= 0 {
		resp.List = l.Lists[i]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	s.ledger.DeleteList(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	Name           string   `json:"name"`
	Amount         float64  `json:"amount"`
	Unit           string   `json:"unit"`
	Category       string   `json:"category"`
	EstimatedPrice *float64 `json:"estimatedPrice,omitempty"`
}

type itemResponse struct {
	ListID string            `json:"listId"`
	Item   core.ShoppingItem `json:"item"`
}

// handleAddItem puts a pending item on a list.
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount < 0 {
		writeError(w, r, core.ErrNegativeQuantity)
		return
	}
	item := core.ShoppingItem{
		Name:           sanitizeInput(req.Name),
		Amount:         req.Amount,
		Unit:           sanitizeInput(req.Unit),
		Category:       sanitizeInput(req.Category),
		EstimatedPrice: req.EstimatedPrice,
	}
	id, err := s.ledger.AddItem(listID, item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeItem(w, r, http.StatusCreated, listID, id)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	listID, itemID := r.PathValue("id"), r.PathValue("itemID")
	var patch services.ItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Name != nil {
		name := sanitizeInput(*patch.Name)
		patch.Name = &name
	}
	if err := s.ledger.UpdateItem(listID, itemID, patch); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeItem(w, r, http.StatusOK, listID, itemID)
}

// writeItem answers with the item as now stored, or 404 when it is absent.
func (s *Server) writeItem(w http.ResponseWriter, r *http.Request, status int, listID, itemID string) {
	l := s.ledger.Ledger()
	i := l.ListIndex(listID)
	if i < 0 {
		writeError(w, r, services.ErrListNotFound)
		return
	}
	j := l.Lists[i].ItemIndex(itemID)
	if j < 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "item not found"})
		return
	}
	writeJSON(w, status, itemResponse{ListID: listID, Item: l.Lists[i].Items[j]})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	s.ledger.DeleteItem(r.PathValue("id"), r.PathValue("itemID"))
	w.WriteHeader(http.StatusNoContent)
}
