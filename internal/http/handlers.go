package http

import (
	"net/http"
	"strings"

	"fincontrol/internal/core"
	"fincontrol/internal/metrics"
	"fincontrol/internal/services"
)

const (
	maxMonths = 60
	maxTop    = 50
	maxRecent = 100
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var opts metrics.Options
	var err error
	if opts.Months, err = queryInt(r, "months", maxMonths); err != nil {
		writeError(w, r, err)
		return
	}
	if opts.Top, err = queryInt(r, "top", maxTop); err != nil {
		writeError(w, r, err)
		return
	}
	if opts.Recent, err = queryInt(r, "recent", maxRecent); err != nil {
		writeError(w, r, err)
		return
	}
	opts.ReserveCategory = sanitizeInput(r.URL.Query().Get("reserve"))

	d, err := s.deps.Dashboard.Dashboard(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", maxMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.deps.Dashboard.Analysis(r.Context(), months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleListTransactions returns the transactions matching ?q grouped by
// day, newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	groups, err := s.deps.Transactions.Search(r.Context(), sanitizeInput(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []metrics.DayGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.deps.Transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	cleanTransaction(&in)

	tx, err := s.deps.Transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	cleanTransaction(&in)
	in.ID = r.PathValue("id")

	tx, err := s.deps.Transactions.Update(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Items []core.LineItem `json:"items"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.deps.Transactions.Extract(r.Context(), sanitizeInput(req.Text))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []core.LineItem{}
	}
	writeJSON(w, http.StatusOK, extractResponse{Items: items})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cats))
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	c.Name = sanitizeInput(c.Name)
	saved, err := s.deps.Catalog.SaveCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Catalog.Goals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(goals))
}

func (s *Server) handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	var g core.Goal
	if err := decodeJSON(w, r, &g); err != nil {
		writeError(w, r, err)
		return
	}
	g.Name = sanitizeInput(g.Name)
	saved, err := s.deps.Catalog.SaveGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type depositRequest struct {
	Amount core.Money `json:"amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	progress, err := s.deps.Catalog.Deposit(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.deps.Catalog.Cards(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cards))
}

func (s *Server) handleSaveCard(w http.ResponseWriter, r *http.Request) {
	var c core.CreditCard
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	c.Name = sanitizeInput(c.Name)
	c.Bank = sanitizeInput(c.Bank)
	saved, err := s.deps.Catalog.SaveCard(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.DeleteCard(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Catalog.Profile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p core.UserProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.Name = sanitizeInput(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	saved, err := s.deps.Catalog.SaveProfile(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func cleanTransaction(in *services.TransactionInput) {
	in.Description = sanitizeInput(in.Description)
	in.Category = sanitizeInput(in.Category)
	in.DetailsText = sanitizeInput(in.DetailsText)
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
