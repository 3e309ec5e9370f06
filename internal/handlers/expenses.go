package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"expense-service/internal/events"
	"expense-service/internal/models"
	"expense-service/internal/storage"
)

const (
	msgFetched        = "Fetching data successfully"
	msgFetchedNothing = "Fetching data successfully, no expense found in this period"
	msgNotFound       = "Expense not found"
)

type expenseRequest struct {
	ExpenseID     int64       `json:"expense_id"`
	UserID        int64       `json:"user_id"`
	CategoryID    int64       `json:"category_id"`
	Title         string      `json:"title"`
	Amount        float64     `json:"amount"`
	DateOfExpense models.Date `json:"date_of_expense"`
	Note          *string     `json:"note"`
}

func (req expenseRequest) complete() bool {
	return req.UserID != 0 && req.CategoryID != 0 && req.Title != "" &&
		req.Amount != 0 && !req.DateOfExpense.IsZero()
}

func (req expenseRequest) expense() models.Expense {
	return models.Expense{
		ID:            req.ExpenseID,
		UserID:        req.UserID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Amount:        req.Amount,
		DateOfExpense: req.DateOfExpense,
		Note:          req.Note,
	}
}

// ownedBy fills in or checks the owning user against the verified token.
// It writes a 403 and returns false when the request names another user.
func ownedBy(w http.ResponseWriter, r *http.Request, userID *int64) bool {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return true
	}
	if *userID == 0 {
		*userID = claims.UserID
		return true
	}
	if *userID != claims.UserID {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

// CreateExpense records a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !ownedBy(w, r, &req.UserID) {
		return
	}
	if !req.complete() {
		writeMessage(w, http.StatusBadRequest, "Could not create expense due to missing required fields")
		return
	}
	if req.Amount < 0 {
		writeMessage(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	created, err := h.db.CreateExpense(r.Context(), req.expense())
	if err != nil {
		h.serverError(w, r, "create expense", err)
		return
	}
	h.publish(r, events.Event{Action: events.ActionCreated, ExpenseID: created.ID, UserID: created.UserID, Expense: created})
	writeJSON(w, http.StatusCreated, dataResponse{Message: "Expense created successfully", Data: created})
}

// ListExpenses returns the caller's expenses matching the optional
// category, startdate and enddate query filters.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r, true)
	if !ok {
		return
	}
	expenses, err := h.db.ListExpenses(r.Context(), f)
	if err != nil {
		h.serverError(w, r, "list expenses", err)
		return
	}
	if len(expenses) == 0 {
		writeJSON(w, http.StatusOK, dataResponse{Message: msgFetchedNothing, Data: expenses})
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Message: msgFetched, Data: expenses})
}

// UpdateExpense overwrites an existing expense.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !ownedBy(w, r, &req.UserID) {
		return
	}
	if req.ExpenseID == 0 || !req.complete() {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.Amount < 0 {
		writeMessage(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	if err := h.db.UpdateExpense(r.Context(), req.expense()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.serverError(w, r, "update expense", err)
		return
	}

	updated, err := h.db.GetExpense(r.Context(), req.UserID, req.ExpenseID)
	if err != nil {
		h.serverError(w, r, "get expense", err)
		return
	}
	h.publish(r, events.Event{Action: events.ActionUpdated, ExpenseID: updated.ID, UserID: updated.UserID, Expense: updated})
	writeJSON(w, http.StatusOK, dataResponse{Message: "Expense updated successfully", Data: updated})
}

type deleteRequest struct {
	UserID    int64 `json:"user_id"`
	ExpenseID int64 `json:"expense_id"`
}

// DeleteExpense removes an expense.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !ownedBy(w, r, &req.UserID) {
		return
	}
	if req.UserID == 0 || req.ExpenseID == 0 {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err := h.db.DeleteExpense(r.Context(), req.UserID, req.ExpenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.serverError(w, r, "delete expense", err)
		return
	}
	h.publish(r, events.Event{Action: events.ActionDeleted, ExpenseID: req.ExpenseID, UserID: req.UserID})
	writeMessage(w, http.StatusOK, "Deleted expense successfully")
}

type ownerRequest struct {
	UserID int64 `json:"user_id"`
}

// parseFilter reads the owning user from the body (or the user_id query
// parameter) and the optional query filters. It writes the error response
// and returns false when the request is invalid.
func parseFilter(w http.ResponseWriter, r *http.Request, withCategory bool) (models.ExpenseFilter, bool) {
	var req ownerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return models.ExpenseFilter{}, false
	}

	q := r.URL.Query()
	if req.UserID == 0 && q.Get("user_id") != "" {
		id, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid user_id")
			return models.ExpenseFilter{}, false
		}
		req.UserID = id
	}
	if !ownedBy(w, r, &req.UserID) {
		return models.ExpenseFilter{}, false
	}
	if req.UserID == 0 {
		writeMessage(w, http.StatusBadRequest, "Missing required field: user_id")
		return models.ExpenseFilter{}, false
	}

	f := models.ExpenseFilter{UserID: req.UserID}
	if v := q.Get("category"); withCategory && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid category")
			return models.ExpenseFilter{}, false
		}
		f.CategoryID = &id
	}
	bounds := []struct {
		param string
		dst   **models.Date
	}{
		{"startdate", &f.StartDate},
		{"enddate", &f.EndDate},
	}
	for _, b := range bounds {
		v := q.Get(b.param)
		if v == "" {
			continue
		}
		d, err := models.ParseDate(v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid "+b.param)
			return models.ExpenseFilter{}, false
		}
		*b.dst = &d
	}
	return f, true
}
