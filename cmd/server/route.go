package main

import (
	"github.com/matryer/way"
)

const (
	URI_WS     = "/play"
	URI_STATUS = "/status"
)

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.Session.HandleHttpCall())
	s.router.HandleFunc("GET", URI_STATUS, serveStatus(s.Session))
}
