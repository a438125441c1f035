package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/crmconsole/internal/server/crm"
	"github.com/dmitrijs2005/crmconsole/internal/shared"
)

func (s *HTTPServer) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cs, err := s.crm.List(r.Context(), crm.Filter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Platform: q.Get("platform"),
		Date:     q.Get("date"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerPage(cs))
}

func (s *HTTPServer) latestCustomers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, shared.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	cs, err := s.crm.Latest(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerPage(cs))
}

// customerForm reads a multipart or urlencoded customer form. The status
// may arrive as either status or customer_status.
func customerForm(r *http.Request) (crm.Input, error) {
	if err := r.ParseMultipartForm(maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return crm.Input{}, shared.NewValidationError("Malformed form body")
	}

	status := r.FormValue("customer_status")
	if status == "" {
		status = r.FormValue("status")
	}
	return crm.Input{
		FullName:             r.FormValue("full_name"),
		Username:             r.FormValue("username"),
		Platform:             r.FormValue("platform"),
		PhoneNumber:          r.FormValue("phone_number"),
		Status:               status,
		AssistantName:        r.FormValue("assistant_name"),
		Notes:                r.FormValue("notes"),
		ConversationLanguage: r.FormValue("conversation_language"),
	}, nil
}

func (s *HTTPServer) createCustomer(w http.ResponseWriter, r *http.Request) {
	in, err := customerForm(r)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.crm.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

func (s *HTTPServer) updateCustomer(w http.ResponseWriter, r *http.Request) {
	in, err := customerForm(r)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.crm.Update(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

func (s *HTTPServer) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := s.crm.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.crm.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalCustomers: st.TotalCustomers,
		ByStatus:       st.ByStatus,
		ByPlatform:     st.ByPlatform,
		PeriodStats: periodStatsDTO{
			Today:       st.PeriodStats.Today,
			ThisWeek:    st.PeriodStats.ThisWeek,
			ThisMonth:   st.PeriodStats.ThisMonth,
			Last3Months: st.PeriodStats.Last3Months,
		},
	})
}
