package repository

import (
	"github.com/deppfellow/swiftsave-helpdesk/internal/server"
)

// Repositories groups every repository so services receive one dependency.
type Repositories struct {
	Solicitudes *SolicitudRepository
}

// NewRepositories builds the repositories on top of the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Solicitudes: NewSolicitudRepository(s.DB.Pool, s.Config.Database.Table),
	}
}
