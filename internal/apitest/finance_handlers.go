package apitest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-finance-client/dashboard"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/money"
	"github.com/jrsteele09/go-finance-client/transactions"
	"github.com/shopspring/decimal"
)

const maxUploadSize = 10 << 20

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, ok := dateRange(w, q.Get("start_date"), q.Get("end_date"))
	if !ok {
		return
	}
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit == 0 {
		limit = 100
	}

	list := s.ledger.List(currentUserID(r), transactions.Type(q.Get("transaction_type")), start, end)
	writeJSON(w, http.StatusOK, page(list, skip, limit))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tx, found := s.ledger.Get(currentUserID(r), id)
	if !found {
		writeDetail(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactions.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := in.ValidateCreate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Create(currentUserID(r), in))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in transactions.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := in.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	tx, found := s.ledger.Update(currentUserID(r), id, in)
	if !found {
		writeDetail(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !s.ledger.Delete(currentUserID(r), id) {
		writeDetail(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, ok := dateRange(w, q.Get("start_date"), q.Get("end_date"))
	if !ok {
		return
	}
	list := s.ledger.List(currentUserID(r), "", start, end)

	var income, expense, fixed, sporadic, investments decimal.Decimal
	byExpense := map[string]money.Amount{}
	byIncome := map[string]money.Amount{}
	months := map[string]*dashboard.MonthTotals{}
	var monthOrder []string

	for _, tx := range list {
		amount := tx.Amount.Decimal
		key := tx.Date.Format("2006-01")
		mt, seen := months[key]
		if !seen {
			mt = &dashboard.MonthTotals{Month: key}
			months[key] = mt
			monthOrder = append(monthOrder, key)
		}

		switch tx.Type {
		case transactions.Income:
			income = income.Add(amount)
			byIncome[tx.Category] = money.NewAmount(byIncome[tx.Category].Add(amount))
			mt.Income = money.NewAmount(mt.Income.Add(amount))
			if tx.Subtype != nil && *tx.Subtype == transactions.Investment {
				investments = investments.Add(amount)
			}
		case transactions.Expense:
			expense = expense.Add(amount)
			byExpense[tx.Category] = money.NewAmount(byExpense[tx.Category].Add(amount))
			mt.Expense = money.NewAmount(mt.Expense.Add(amount))
			if tx.Subtype != nil && *tx.Subtype == transactions.Fixed {
				fixed = fixed.Add(amount)
			} else {
				sporadic = sporadic.Add(amount)
			}
		}
	}

	stats := dashboard.Stats{
		TotalIncome:        money.NewAmount(income),
		TotalExpense:       money.NewAmount(expense),
		Balance:            money.NewAmount(income.Sub(expense)),
		ExpenseByCategory:  byExpense,
		IncomeByCategory:   byIncome,
		MonthlyTrend:       []dashboard.MonthTotals{},
		RecentTransactions: []dashboard.RecentTransaction{},
		FixedExpenses:      money.NewAmount(fixed),
		SporadicExpenses:   money.NewAmount(sporadic),
		Investments:        money.NewAmount(investments),
	}
	// list is newest first, so the trend is built back to front.
	for i := len(monthOrder) - 1; i >= 0; i-- {
		stats.MonthlyTrend = append(stats.MonthlyTrend, *months[monthOrder[i]])
	}
	if len(monthOrder) > 0 {
		latest := months[monthOrder[0]]
		stats.MonthlyBalance = money.NewAmount(latest.Income.Sub(latest.Expense.Decimal))
	}
	for _, tx := range page(list, 0, 10) {
		stats.RecentTransactions = append(stats.RecentTransactions, dashboard.RecentTransaction{
			ID:          tx.ID,
			Type:        string(tx.Type),
			Description: tx.Description,
			Amount:      tx.Amount,
			Date:        tx.Date.String(),
			Category:    tx.Category,
		})
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	var in dashboard.HourlyCalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := in.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	start := utils.NewDate(in.Year, time.Month(in.Month), 1)
	end := utils.Date{Time: start.AddDate(0, 1, -1)}
	received := decimal.Zero
	for _, tx := range s.ledger.List(currentUserID(r), transactions.Income, start, end) {
		received = received.Add(tx.Amount.Decimal)
	}

	hours := float64(in.DaysWorked) * in.HoursPerDay
	perHour := received.Div(decimal.NewFromFloat(hours)).Round(2)
	perDay := received.Div(decimal.NewFromInt(int64(in.DaysWorked))).Round(2)
	writeJSON(w, http.StatusOK, dashboard.HourlyCalculationResponse{
		TotalReceived: money.NewAmount(received),
		DaysWorked:    in.DaysWorked,
		HoursPerDay:   in.HoursPerDay,
		TotalHours:    hours,
		ValuePerHour:  money.NewAmount(perHour),
		ValuePerDay:   money.NewAmount(perDay),
		ValuePerWeek:  money.NewAmount(perDay.Mul(decimal.NewFromInt(5))),
		Month:         fmt.Sprintf("%04d-%02d", in.Year, in.Month),
	})
}

// handleUploadExcel imports one expense per non-empty line of the upload.
// The fake does not parse spreadsheets.
func (s *Server) handleUploadExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		writeDetail(w, http.StatusBadRequest, "File must be Excel format (.xlsx or .xls)")
		return
	}

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		expense := transactions.Expense
		today := utils.Date{Time: time.Now().UTC().Truncate(24 * time.Hour)}
		amount := money.FromFloat(1)
		s.ledger.Create(currentUserID(r), transactions.Input{
			Type:        &expense,
			Description: &line,
			Amount:      &amount,
			Date:        &today,
		})
		count++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully imported %d transactions", count),
		"count":   count,
	})
}

func (s *Server) handleReport(contentType, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, end, ok := dateRange(w, q.Get("start_date"), q.Get("end_date"))
		if !ok {
			return
		}
		list := s.ledger.List(currentUserID(r), transactions.Type(q.Get("transaction_type")), start, end)

		var body bytes.Buffer
		fmt.Fprintf(&body, "report %s\n", filename)
		for _, tx := range list {
			if c := q.Get("category"); c != "" && tx.Category != c {
				continue
			}
			fmt.Fprintf(&body, "%s;%s;%s;%s\n", tx.Date, tx.Type, tx.Description, tx.Amount.StringFixed(2))
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body.Bytes())
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}

func dateRange(w http.ResponseWriter, startParam, endParam string) (utils.Date, utils.Date, bool) {
	var start, end utils.Date
	var err error
	if startParam != "" {
		if start, err = utils.ParseDate(startParam); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return start, end, false
		}
	}
	if endParam != "" {
		if end, err = utils.ParseDate(endParam); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return start, end, false
		}
	}
	return start, end, true
}
