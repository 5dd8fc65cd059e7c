package handler

import (
	"net/http"
	"time"

	"finance-tracker/internal/auth"

	"github.com/beevik/etree"
)

// ExportStatement handles GET /api/export: an XML statement of the session
// user's transactions with per-category totals. Display labels are applied
// here, at the presentation boundary.
func (h *Handler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	transactions, err := h.svc.ListTransactions(r.Context(), user.ID)
	if err != nil {
		h.log.Errorf("Failed to list transactions for export: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to export statement"})
		return
	}
	stats, err := h.svc.CategoryStatistics(r.Context(), user.ID)
	if err != nil {
		h.log.Errorf("Failed to aggregate statistics for export: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to export statement"})
		return
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	statement := doc.CreateElement("statement")
	statement.CreateAttr("username", user.Username)
	statement.CreateAttr("generatedAt", time.Now().Format(time.RFC3339))

	totals := statement.CreateElement("totals")
	for _, stat := range stats {
		e := totals.CreateElement("category")
		e.CreateAttr("name", string(stat.Category))
		e.CreateAttr("label", stat.Category.Label())
		e.SetText(stat.TotalAmount.String())
	}

	list := statement.CreateElement("transactions")
	for _, tx := range transactions {
		e := list.CreateElement("transaction")
		e.CreateAttr("id", tx.ID.Hex())
		e.CreateElement("description").SetText(tx.Description)
		e.CreateElement("category").SetText(string(tx.Category))
		e.CreateElement("paymentType").SetText(string(tx.PaymentType))
		e.CreateElement("amount").SetText(tx.Amount.String())
		if tx.Location != "" {
			e.CreateElement("location").SetText(tx.Location)
		}
		e.CreateElement("date").SetText(tx.Date.Format(time.RFC3339))
	}

	doc.Indent(2)
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.xml"`)
	if _, err := doc.WriteTo(w); err != nil {
		h.log.Errorf("Failed to write statement: %v", err)
	}
}
