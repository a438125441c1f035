package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func pathID(r *http.Request) int64 {
	// the route pattern only admits digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *HTTPServer) dashboard(w http.ResponseWriter, r *http.Request) {
	all, st, err := s.users.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := dashboardResponse{
		Users: make([]userDTO, 0, len(all)),
		Statistics: userStatisticsDTO{
			UserCount:         st.UserCount,
			ActiveUserCount:   st.ActiveUserCount,
			InactiveUserCount: st.InactiveUserCount,
		},
	}
	for _, u := range all {
		resp.Users = append(resp.Users, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.users.CreateUser(r.Context(), req.toAccount())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.users.UpdateUser(r.Context(), userFrom(r.Context()).ID, pathID(r), req.toAccount())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (s *HTTPServer) toggleUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.ToggleActive(r.Context(), userFrom(r.Context()).ID, pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteUser(r.Context(), userFrom(r.Context()).ID, pathID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
