package api

import "net/http"

// greeting is the fixed body of GET /.
const greeting = "Hello World!"

// handleIndex returns the greeting.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeBody(w, http.StatusOK, "text/plain; charset=utf-8", []byte(greeting))
}
